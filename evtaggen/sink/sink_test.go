package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "single file", path: "events_gen.go"},
		{name: "nested", path: "internal/events/events_gen.go"},
		{name: "dots in name", path: "a/..b/c..go"},
		{name: "empty", path: "", wantErr: "empty"},
		{name: "absolute", path: "/abs/events_gen.go", wantErr: "absolute paths not allowed"},
		{name: "drive letter", path: "C:/events_gen.go", wantErr: "absolute paths not allowed"},
		{name: "backslash", path: `a\events_gen.go`, wantErr: "forward slashes"},
		{name: "traversal", path: "a/../events_gen.go", wantErr: "path traversal not allowed"},
		{name: "leading traversal", path: "../events_gen.go", wantErr: "path traversal not allowed"},
		{name: "just dotdot", path: "..", wantErr: "path traversal not allowed"},
		{name: "dot prefix", path: "./events_gen.go", wantErr: "not clean"},
		{name: "double slash", path: "a//events_gen.go", wantErr: "not clean"},
		{name: "trailing slash", path: "a/", wantErr: "not clean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidatePath(%q) = %v, want nil", tt.path, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidatePath(%q) = %v, want error containing %q", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()

	t.Run("write and get", func(t *testing.T) {
		s := NewMemorySink()
		if err := s.WriteFile(ctx, "a/events_gen.go", []byte("package a")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if got := string(s.Get("a/events_gen.go")); got != "package a" {
			t.Errorf("Get() = %q", got)
		}
		if s.Get("missing.go") != nil {
			t.Error("Get() of a missing file should be nil")
		}
	})

	t.Run("copies", func(t *testing.T) {
		s := NewMemorySink()
		content := []byte("original")
		if err := s.WriteFile(ctx, "f.go", content); err != nil {
			t.Fatal(err)
		}
		content[0] = 'X'
		s.Get("f.go")[0] = 'Y'
		files := s.Files()
		files["f.go"][0] = 'Z'
		files["other.go"] = nil

		if got := string(s.Get("f.go")); got != "original" {
			t.Errorf("stored content modified: %q", got)
		}
		if len(s.Files()) != 1 {
			t.Errorf("Files() exposed internal map")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		s := NewMemorySink()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := s.WriteFile(cctx, "f.go", nil); err == nil {
			t.Error("expected error for cancelled context")
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		s := NewMemorySink()
		if err := s.WriteFile(ctx, "../f.go", nil); err == nil {
			t.Error("expected error for invalid path")
		}
	})
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("pkg%d/events_gen.go", i)
			if err := s.WriteFile(ctx, path, []byte(path)); err != nil {
				t.Errorf("WriteFile() error = %v", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Files()
		}()
	}
	wg.Wait()

	if got := len(s.Files()); got != 50 {
		t.Errorf("got %d files, want 50", got)
	}
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()

	t.Run("creates parents", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		if err := s.WriteFile(ctx, "a/b/events_gen.go", []byte("nested")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got, err := os.ReadFile(filepath.Join(root, "a", "b", "events_gen.go"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "nested" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("mode", func(t *testing.T) {
		for _, tt := range []struct {
			mode, want os.FileMode
		}{{0600, 0600}, {0, 0644}} {
			root := t.TempDir()
			s := &FilesystemSink{Root: root, Mode: tt.mode}
			if err := s.WriteFile(ctx, "f.go", []byte("x")); err != nil {
				t.Fatal(err)
			}
			info, err := os.Stat(filepath.Join(root, "f.go"))
			if err != nil {
				t.Fatal(err)
			}
			if got := info.Mode().Perm(); got != tt.want {
				t.Errorf("Mode %o: file mode = %o, want %o", tt.mode, got, tt.want)
			}
		}
	})

	t.Run("overwrites", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		for _, content := range []string{"first", "second"} {
			if err := s.WriteFile(ctx, "f.go", []byte(content)); err != nil {
				t.Fatal(err)
			}
		}
		got, _ := os.ReadFile(filepath.Join(root, "f.go"))
		if string(got) != "second" {
			t.Errorf("content = %q, want second", got)
		}
	})

	t.Run("unchanged content is not rewritten", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "f.go")
		if err := os.WriteFile(path, []byte("same"), 0644); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-time.Hour).Truncate(time.Second)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}

		if err := NewFilesystemSink(root).WriteFile(ctx, "f.go", []byte("same")); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if !info.ModTime().Equal(old) {
			t.Errorf("mod time changed to %v", info.ModTime())
		}
	})

	t.Run("no temp files left", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		for i := 0; i < 3; i++ {
			if err := s.WriteFile(ctx, "f.go", []byte(fmt.Sprint(i))); err != nil {
				t.Fatal(err)
			}
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Name() != "f.go" {
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("directory holds %v", names)
		}
	})

	t.Run("rejects bad paths", func(t *testing.T) {
		s := NewFilesystemSink(t.TempDir())
		for _, p := range []string{"../escape.go", "/abs.go", "."} {
			if err := s.WriteFile(ctx, p, nil); err == nil {
				t.Errorf("WriteFile(%q) succeeded", p)
			}
		}
	})

	t.Run("batch stages before replacing", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "a"), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, "a", "f.go"), []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
		// b is a file, so no directory can be created for b/f.go.
		if err := os.WriteFile(filepath.Join(root, "b"), nil, 0644); err != nil {
			t.Fatal(err)
		}

		err := NewFilesystemSink(root).WriteFiles(ctx, map[string][]byte{
			"a/f.go": []byte("new"),
			"b/f.go": []byte("new"),
		})
		if err == nil || !strings.Contains(err.Error(), "b/f.go") {
			t.Fatalf("expected error for b/f.go, got %v", err)
		}
		got, _ := os.ReadFile(filepath.Join(root, "a", "f.go"))
		if string(got) != "old" {
			t.Errorf("a/f.go = %q, want old", got)
		}
		entries, _ := os.ReadDir(filepath.Join(root, "a"))
		if len(entries) != 1 {
			t.Errorf("temp files left in a: %d entries", len(entries))
		}
	})

	t.Run("batch", func(t *testing.T) {
		root := t.TempDir()
		files := map[string][]byte{"x/e.go": []byte("x"), "y/e.go": []byte("y")}
		if err := NewFilesystemSink(root).WriteFiles(ctx, files); err != nil {
			t.Fatal(err)
		}
		for path, want := range files {
			got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
			if err != nil || string(got) != string(want) {
				t.Errorf("%s = %q, %v", path, got, err)
			}
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		root := t.TempDir()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := NewFilesystemSink(root).WriteFile(cctx, "f.go", []byte("x")); err == nil {
			t.Error("expected error for cancelled context")
		}
		if _, err := os.Stat(filepath.Join(root, "f.go")); !os.IsNotExist(err) {
			t.Errorf("file written despite cancellation: %v", err)
		}
	})
}

func TestCheckSink(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "b"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.go"), []byte("current"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "b", "b.go"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	s := &CheckSink{Root: root}
	for path, content := range map[string]string{
		"a.go":   "current",
		"b/b.go": "new",
		"c.go":   "missing",
	} {
		if err := s.WriteFile(ctx, path, []byte(content)); err != nil {
			t.Fatalf("WriteFile(%q) error = %v", path, err)
		}
	}

	if diff := cmp.Diff([]string{"b/b.go", "c.go"}, s.Stale()); diff != "" {
		t.Errorf("Stale() (-want +got):\n%s", diff)
	}

	got, _ := os.ReadFile(filepath.Join(root, "b", "b.go"))
	if string(got) != "old" {
		t.Errorf("CheckSink modified a file: %q", got)
	}
}
