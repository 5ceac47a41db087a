// Package sniff guesses a file extension from leading magic bytes,
// for files whose names carry no extension.
package sniff

import (
	"errors"
	"io"
	"os"
)

var signatures = []struct {
	prefix []byte
	ext    string
}{
	{[]byte{0xff, 0xd8, 0xff}, "jpg"},
	{[]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, "png"},
	{[]byte("GIF8"), "gif"},
	{[]byte{0x49, 0x49, 0x2a, 0x00}, "tif"},
	{[]byte{0x4d, 0x4d, 0x00, 0x2a}, "tif"},
	{[]byte("%PDF"), "pdf"},
	{[]byte{0x50, 0x4b, 0x03, 0x04}, "zip"},
	{[]byte{0x1f, 0x8b}, "gz"},
}

// Hint returns the extension implied by the file's first bytes, or ""
// when nothing matches or the file cannot be read.
func Hint(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return ""
	}
	return DetectHeader(header[:n])
}

// DetectHeader matches header against the known signatures.
func DetectHeader(header []byte) string {
	for _, sig := range signatures {
		if hasPrefix(header, sig.prefix) {
			return sig.ext
		}
	}
	return ""
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
