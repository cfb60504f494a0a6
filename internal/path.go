package internal

import (
	"io/fs"
	"strings"
)

// ValidPath reports whether name is a valid fs.FS path that is also safe to
// use as a file name on Windows (no backslashes).
func ValidPath(name string) bool {
	if strings.Contains(name, "\\") {
		return false
	}

	return fs.ValidPath(name)
}
