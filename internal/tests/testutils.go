// Package tests holds helpers for this module's tests.
package tests

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

func MustURL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		panic(err)
	}

	return u
}

// UnusableDir returns a path that can't be used as a directory, even by
// root: it names a regular file.
func UnusableDir(t *testing.T) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	return p
}
