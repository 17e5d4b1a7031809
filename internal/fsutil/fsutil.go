// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"os"
)

// Exists reports whether path exists on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CheckFiles verifies that every path in the list exists. The first missing
// path is reported by name so a bad configuration fails with an actionable
// message.
func CheckFiles(paths []string) error {
	for _, p := range paths {
		if !Exists(p) {
			return fmt.Errorf("required file does not exist: %s", p)
		}
	}
	return nil
}
