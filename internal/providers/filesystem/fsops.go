package filesystem

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// maxReadSize caps how much text a single read_file call returns, so one
// oversized file can't blow past an MCP client's response budget. The
// teacher's own llm-filesystem tools cap around 70K characters for the same
// reason (Claude's tool-response ceiling); reads past the cap come back
// truncated rather than failing outright.
const maxReadSize = 70000

// normalizePath expands a leading ~, cleans ".."/"." segments, and makes the
// result absolute so every downstream check compares apples to apples.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		abs, err := filepath.Abs(cleaned)
		if err != nil {
			return "", fmt.Errorf("resolve absolute path: %w", err)
		}
		cleaned = abs
	}
	return cleaned, nil
}

// withinRoots reports whether path is one of allowed, or nested under one of
// them. An empty allowed list is treated as "no sandbox".
func withinRoots(path string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, root := range allowed {
		normalizedRoot, err := normalizePath(root)
		if err != nil {
			continue
		}
		if path == normalizedRoot || strings.HasPrefix(path, normalizedRoot+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// confinePath normalizes path and rejects it unless it falls under one of
// the provider's allowed roots. Every filesystem tool handler routes through
// this before touching disk.
func confinePath(path string, allowed []string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}
	if !withinRoots(normalized, allowed) {
		return "", fmt.Errorf("path %q is outside the allowed directories", path)
	}
	return normalized, nil
}

// resolveSymlink follows a symlink to its target, leaving the path untouched
// if it isn't one (or doesn't exist yet, e.g. a write target).
func resolveSymlink(path string) string {
	info, err := os.Lstat(path)
	if err != nil {
		return path
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return path
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return target
}

// readResult is the JSON body returned by the read_file tool.
type readResult struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Size      int64  `json:"size"`
	Lines     int    `json:"lines,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// readFile reads a file's full content, or a 1-indexed [lineStart,
// lineStart+lineCount) window when either is set. Content past maxReadSize
// is truncated rather than rejected outright, since a partial read is still
// useful to a client.
func readFile(path string, lineStart, lineCount int, allowed []string) (*readResult, error) {
	resolved := resolveSymlink(path)
	confined, err := confinePath(resolved, allowed)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(confined)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", confined, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", confined)
	}

	var content string
	var lines int
	if lineStart > 0 || lineCount > 0 {
		content, lines, err = readLines(confined, lineStart, lineCount)
	} else {
		content, lines, err = readWhole(confined)
	}
	if err != nil {
		return nil, err
	}

	truncated := false
	if len(content) > maxReadSize {
		content = content[:maxReadSize]
		truncated = true
	}

	return &readResult{
		Path:      confined,
		Content:   content,
		Size:      int64(len(content)),
		Lines:     lines,
		Truncated: truncated,
	}, nil
}

func readWhole(path string) (string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), strings.Count(string(data), "\n"), nil
}

func readLines(path string, startLine, lineCount int) (string, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if startLine < 1 {
		startLine = 1
	}

	var out strings.Builder
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	current, collected := 0, 0
	for scanner.Scan() {
		current++
		if current < startLine {
			continue
		}
		if lineCount > 0 && collected >= lineCount {
			break
		}
		out.WriteString(scanner.Text())
		out.WriteByte('\n')
		collected++
	}
	if err := scanner.Err(); err != nil {
		return "", 0, fmt.Errorf("scan %s: %w", path, err)
	}
	return out.String(), collected, nil
}

// writeResult is the JSON body returned by the write_file tool.
type writeResult struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Created bool   `json:"created"`
}

// writeFile writes content to path, creating parent directories when
// createDirs is set and appending rather than truncating when append is set.
func writeFile(path, content string, createDirs, append bool, allowed []string) (*writeResult, error) {
	confined, err := confinePath(path, allowed)
	if err != nil {
		return nil, err
	}

	if createDirs {
		if err := os.MkdirAll(filepath.Dir(confined), 0755); err != nil {
			return nil, fmt.Errorf("create parent directories for %s: %w", confined, err)
		}
	}

	_, statErr := os.Stat(confined)
	created := os.IsNotExist(statErr)

	flags := os.O_WRONLY | os.O_CREATE
	if append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(confined, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s for write: %w", confined, err)
	}
	defer file.Close()

	n, err := file.WriteString(content)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", confined, err)
	}

	return &writeResult{Path: confined, Size: int64(n), Created: created}, nil
}

// dirEntry is one element of a list_directory result.
type dirEntry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	IsDir        bool   `json:"is_dir"`
	Size         int64  `json:"size"`
	SizeReadable string `json:"size_readable,omitempty"`
	Mode         string `json:"mode"`
	Modified     string `json:"modified"`
	Created      string `json:"created,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
}

// listDirectory lists the entries of path, skipping dotfiles unless
// showHidden is set and filtering by a glob pattern when one is given.
func listDirectory(path string, showHidden bool, pattern string, allowed []string) ([]dirEntry, error) {
	confined, err := confinePath(path, allowed)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(confined)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", confined, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", confined)
	}

	raw, err := os.ReadDir(confined)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", confined, err)
	}

	entries := make([]dirEntry, 0, len(raw))
	for _, de := range raw {
		name := de.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if pattern != "" {
			if matched, _ := filepath.Match(pattern, name); !matched {
				continue
			}
		}

		fi, err := de.Info()
		if err != nil {
			continue
		}

		entryPath := filepath.Join(confined, name)
		created, _, modified := fileTimestamps(fi)

		entry := dirEntry{
			Name:     name,
			Path:     entryPath,
			IsDir:    fi.IsDir(),
			Size:     fi.Size(),
			Mode:     fi.Mode().String(),
			Modified: modified.Format(time.RFC3339),
			Created:  created.Format(time.RFC3339),
		}
		if !fi.IsDir() {
			entry.SizeReadable = humanize.Bytes(uint64(fi.Size()))
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// createDirectory creates path and any missing parents.
func createDirectory(path string, allowed []string) (string, error) {
	confined, err := confinePath(path, allowed)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(confined, 0755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", confined, err)
	}
	return confined, nil
}

// statResult is the JSON body returned by the get_file_info tool.
type statResult struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	HumanSize string `json:"human_size"`
	IsDir     bool   `json:"is_dir"`
	Mode      string `json:"mode"`
	Modified  string `json:"modified"`
}

// statPath returns size, mode and modification time for path.
func statPath(path string, allowed []string) (*statResult, error) {
	confined, err := confinePath(path, allowed)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(confined)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", confined, err)
	}
	return &statResult{
		Path:      confined,
		Name:      info.Name(),
		Size:      info.Size(),
		HumanSize: humanize.Bytes(uint64(info.Size())),
		IsDir:     info.IsDir(),
		Mode:      info.Mode().String(),
		Modified:  info.ModTime().Format(time.RFC3339),
	}, nil
}
