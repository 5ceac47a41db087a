package organizer

import (
	"os"
	"strings"
)

// eligible reports whether a directory entry should be organized.
// Only regular files qualify; dotfiles are treated as hidden. An entry
// whose attributes cannot be read is rejected rather than risk moving
// something unintended.
func eligible(entry os.DirEntry) bool {
	if strings.HasPrefix(entry.Name(), ".") {
		return false
	}
	if !entry.Type().IsRegular() {
		return false
	}
	if _, err := entry.Info(); err != nil {
		return false
	}
	return true
}
