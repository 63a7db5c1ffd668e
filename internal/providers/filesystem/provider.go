// Package filesystem mounts a sandboxed view of the local filesystem as both
// an mcp.ResourceProvider (files under the allowed roots, addressable by
// file:// URI) and an mcp.ToolProvider (read/write/list/create operations).
// Path confinement, reads, writes, and directory listing are implemented
// directly in this package (fsops.go) rather than through a general-purpose
// filesystem library.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	ignore "github.com/sabhiram/go-gitignore"
)

const uriScheme = "file://"

// Provider confines every filesystem operation to a fixed set of allowed
// roots (see confinePath in fsops.go). It additionally filters resource
// listings through any .gitignore found above each root, and serialises
// writes through an advisory lock file per root so two concurrent tool calls
// against the same tree don't interleave.
type Provider struct {
	allowedDirs []string
	lockDir     string
}

// New builds a filesystem provider rooted at allowedDirs. lockDir holds the
// advisory lock files used to serialise writes; an empty lockDir falls back
// to os.TempDir().
func New(allowedDirs []string, lockDir string) *Provider {
	if lockDir == "" {
		lockDir = os.TempDir()
	}
	roots := make([]string, len(allowedDirs))
	for i, d := range allowedDirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			abs = d
		}
		roots[i] = abs
	}
	return &Provider{allowedDirs: roots, lockDir: lockDir}
}

func pathToURI(path string) string {
	return uriScheme + filepath.ToSlash(path)
}

func uriToPath(uri string) (string, error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", fmt.Errorf("unsupported resource scheme: %s", uri)
	}
	return strings.TrimPrefix(uri, uriScheme), nil
}

// loadGitignore walks up from path looking for a .gitignore, mirroring how a
// git worktree resolves ignore rules for a file outside its own directory.
func loadGitignore(path string) *ignore.GitIgnore {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}
	for {
		candidate := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(candidate); err == nil {
			if gi, err := ignore.CompileIgnoreFile(candidate); err == nil {
				return gi
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// lockFor returns an advisory flock guarding writes under root. Every root
// gets its own lock file so writes under independent roots never contend.
func (p *Provider) lockFor(root string) *flock.Flock {
	name := strings.ReplaceAll(strings.Trim(filepath.ToSlash(root), "/"), "/", "_")
	if name == "" {
		name = "root"
	}
	return flock.New(filepath.Join(p.lockDir, "mcp-hub-fs-"+name+".lock"))
}

// rootFor returns the allowed root path is nested under, for lock scoping.
func (p *Provider) rootFor(path string) string {
	for _, root := range p.allowedDirs {
		if strings.HasPrefix(path, root) {
			return root
		}
	}
	if len(p.allowedDirs) > 0 {
		return p.allowedDirs[0]
	}
	return path
}
