// Package sink provides destinations for generated Go files.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Sink receives generated files. Paths are slash-separated and relative;
// the sink decides where they end up. Implementations must be safe for
// concurrent use.
type Sink interface {
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes below Root on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the permission of written files. Default: 0644.
	Mode os.FileMode
}

// NewFilesystemSink returns a sink writing below root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0644}
}

// WriteFile replaces path atomically: content goes to a temporary file in
// the destination directory, which is then renamed over the target. A
// file whose content is already identical is left untouched, so its
// modification time only changes when its content does.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	return s.WriteFiles(ctx, map[string][]byte{path: content})
}

// WriteFiles writes several files in two phases. Every changed file is
// first written to a temporary file next to its target; only when all of
// them are staged are they renamed into place. A failure while staging
// leaves every target untouched. A failing rename, which needs the
// filesystem to change under the sink, can leave earlier targets replaced.
func (s *FilesystemSink) WriteFiles(ctx context.Context, files map[string][]byte) error {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	type staged struct{ tmp, full string }
	var pending []staged
	discard := func(from int) {
		for _, p := range pending[from:] {
			_ = os.Remove(p.tmp)
		}
	}

	for _, path := range paths {
		full, err := s.resolve(path)
		if err != nil {
			discard(0)
			return err
		}
		content := files[path]
		if existing, err := os.ReadFile(full); err == nil && bytes.Equal(existing, content) {
			continue
		}
		if err := ctx.Err(); err != nil {
			discard(0)
			return err
		}
		tmp, err := s.stage(full, content)
		if err != nil {
			discard(0)
			return fmt.Errorf("%s: %w", path, err)
		}
		pending = append(pending, staged{tmp: tmp, full: full})
	}

	if err := ctx.Err(); err != nil {
		discard(0)
		return err
	}
	for i, p := range pending {
		if err := os.Rename(p.tmp, p.full); err != nil {
			discard(i)
			return fmt.Errorf("failed to rename temp file: %w", err)
		}
	}
	return nil
}

// stage writes content to a temporary file in the directory of full and
// returns its path.
func (s *FilesystemSink) stage(full string, content []byte) (string, error) {
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tmp, err := os.CreateTemp(dir, ".evtag-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if writeErr != nil {
		cleanup()
		return "", fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr != nil {
		cleanup()
		return "", fmt.Errorf("failed to close temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}
	return tmpPath, nil
}

// resolve validates path and joins it to Root, refusing anything that
// would land outside Root.
func (s *FilesystemSink) resolve(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	full := filepath.Join(s.Root, filepath.FromSlash(path))

	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root directory: %q", path)
	}
	return full, nil
}

// MemorySink keeps generated files in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content under path.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = bytes.Clone(content)
	return nil
}

// Files returns a copy of every stored file.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.files))
	for path, content := range s.files {
		out[path] = bytes.Clone(content)
	}
	return out
}

// Get returns a copy of one file, or nil if it was never written.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return bytes.Clone(content)
}

// CheckSink compares generated files against what is on disk below Root
// without writing anything.
type CheckSink struct {
	Root string

	mu    sync.Mutex
	stale []string
}

// WriteFile records path as stale when the file below Root is missing or
// differs from content.
func (s *CheckSink) WriteFile(ctx context.Context, path string, content []byte) error {
	full, err := (&FilesystemSink{Root: s.Root}).resolve(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := os.ReadFile(full)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err == nil && bytes.Equal(existing, content) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = append(s.stale, path)
	return nil
}

// Stale returns the sorted paths whose files are out of date.
func (s *CheckSink) Stale() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]string(nil), s.stale...)
	sort.Strings(out)
	return out
}

// ValidatePath reports whether path is usable as an output path: relative,
// slash-separated, clean and free of ".." components.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}
	// Drive letters, even on Unix.
	if len(path) >= 2 && path[1] == ':' && ((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}
	if strings.Contains(path, `\`) {
		return errors.New("path must use forward slashes")
	}
	for _, elem := range strings.Split(path, "/") {
		if elem == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, path)
	}
	return nil
}
