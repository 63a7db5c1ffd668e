package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfinePathRejectsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	_, err := confinePath(filepath.Join(root, "..", "escape.txt"), []string{root})
	if err == nil {
		t.Fatal("expected error for a path outside the allowed root")
	}
}

func TestConfinePathAllowsExactRootAndNested(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b.txt")
	if _, err := confinePath(root, []string{root}); err != nil {
		t.Errorf("confinePath(root) error = %v", err)
	}
	if _, err := confinePath(nested, []string{root}); err != nil {
		t.Errorf("confinePath(nested) error = %v", err)
	}
}

func TestConfinePathEmptyAllowedListPermitsAnything(t *testing.T) {
	if _, err := confinePath("/tmp/whatever.txt", nil); err != nil {
		t.Errorf("confinePath() with no allowed roots error = %v", err)
	}
}

func TestReadFileWholeAndByLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	whole, err := readFile(path, 0, 0, []string{dir})
	if err != nil {
		t.Fatalf("readFile() error = %v", err)
	}
	if whole.Content != "one\ntwo\nthree\n" {
		t.Errorf("Content = %q, want full file", whole.Content)
	}

	windowed, err := readFile(path, 2, 1, []string{dir})
	if err != nil {
		t.Fatalf("readFile() windowed error = %v", err)
	}
	if windowed.Content != "two\n" || windowed.Lines != 1 {
		t.Errorf("windowed read = %+v, want line 2 only", windowed)
	}
}

func TestReadFileTruncatesOversizedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	big := make([]byte, maxReadSize+500)
	for i := range big {
		big[i] = 'x'
	}
	if err := os.WriteFile(path, big, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result, err := readFile(path, 0, 0, []string{dir})
	if err != nil {
		t.Fatalf("readFile() error = %v", err)
	}
	if !result.Truncated {
		t.Error("expected Truncated = true for an oversized file")
	}
	if len(result.Content) != maxReadSize {
		t.Errorf("Content length = %d, want %d", len(result.Content), maxReadSize)
	}
}

func TestReadFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := readFile(dir, 0, 0, []string{dir}); err == nil {
		t.Fatal("expected error reading a directory as a file")
	}
}

func TestWriteFileCreatesAndAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	result, err := writeFile(path, "hello", true, false, []string{dir})
	if err != nil {
		t.Fatalf("writeFile() error = %v", err)
	}
	if !result.Created {
		t.Error("expected Created = true for a new file")
	}

	if _, err := writeFile(path, " world", false, true, []string{dir}); err != nil {
		t.Fatalf("writeFile() append error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back fixture: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("file contents = %q, want %q", data, "hello world")
	}
}

func TestListDirectoryFiltersHiddenAndPattern(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"visible.go", "other.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}

	entries, err := listDirectory(dir, false, "*.go", []string{dir})
	if err != nil {
		t.Fatalf("listDirectory() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "visible.go" {
		t.Fatalf("entries = %+v, want only visible.go", entries)
	}
}

func TestListDirectoryShowHiddenIncludesDotfiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	entries, err := listDirectory(dir, true, "", []string{dir})
	if err != nil {
		t.Fatalf("listDirectory() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != ".hidden" {
		t.Fatalf("entries = %+v, want .hidden included", entries)
	}
}

func TestCreateDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "c")

	confined, err := createDirectory(target, []string{dir})
	if err != nil {
		t.Fatalf("createDirectory() error = %v", err)
	}
	info, err := os.Stat(confined)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected %s to exist as a directory, stat err = %v", confined, err)
	}
}

func TestStatPathReportsSizeAndMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result, err := statPath(path, []string{dir})
	if err != nil {
		t.Fatalf("statPath() error = %v", err)
	}
	if result.Size != 5 || result.IsDir {
		t.Errorf("statPath() = %+v, want size 5, not a directory", result)
	}
	if result.HumanSize == "" {
		t.Error("expected a non-empty human-readable size")
	}
}
