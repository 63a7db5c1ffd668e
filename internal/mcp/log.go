package mcp

import (
	"fmt"
	"io"
	"os"
)

// verboseLogger is the ambient logging shape both hubs share: lifecycle
// events (register/unregister, reconnect, broadcast failures) written with
// fmt.Fprintf to an io.Writer, gated by a verbose flag that mirrors the
// METIS_VERBOSE environment variable read at the outermost binary layer.
// Neither hub reaches for a structured logging library here: stdio
// transports use stdout as the wire, so lifecycle logging stays quiet and
// deliberately plain.
type verboseLogger struct {
	w       io.Writer
	verbose bool
}

func newVerboseLogger() *verboseLogger {
	return &verboseLogger{w: os.Stderr}
}

func (l *verboseLogger) SetOutput(w io.Writer, verbose bool) {
	if w != nil {
		l.w = w
	}
	l.verbose = verbose
}

func (l *verboseLogger) logf(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.w, format+"\n", args...)
}
