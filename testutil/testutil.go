// Package testutil provides helpers for tests that run the generator
// against throwaway modules.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ModulePath is the module path of modules created by WriteModule.
const ModulePath = "example.com/app"

// RuntimePackage is the import path of the stub runtime package every
// module created by WriteModule contains.
const RuntimePackage = ModulePath + "/rt"

const runtimeSource = `package rt

type Sink interface {
	Publish(name string, payload any)
}

type Holder interface {
	Name() string
	Payload() any
}
`

// WriteModule creates a module in a temporary directory holding files
// (slash-separated paths relative to the module root) plus a go.mod and a
// stub runtime package, and returns its directory. The module has no
// dependencies, so loading it needs no network.
func WriteModule(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	all := map[string]string{
		"go.mod":   "module " + ModulePath + "\n\ngo 1.21\n",
		"rt/rt.go": runtimeSource,
	}
	for name, content := range files {
		all[name] = content
	}
	for name, content := range all {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// WriteFile writes content to the slash-separated path name below dir,
// creating parent directories.
func WriteFile(t testing.TB, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// AssertContains fails t for every want missing from got.
func AssertContains(t testing.TB, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}
