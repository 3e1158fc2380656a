// Package readfile loads documents the way the engine expects them: UTF-8
// with every line ending turned into '\n'.
package readfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// MaxSize bounds the files the command line tools will open.
const MaxSize = 16 << 20

var (
	ErrBinary   = errors.New("binary file")
	ErrTooLarge = errors.New("file too large")
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// ReadNormalized returns the contents of path with a leading byte order
// mark dropped and CRLF or lone CR line endings replaced by LF.
func ReadNormalized(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxSize {
		return "", fmt.Errorf("%s: %w", path, ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if IsBinary(data) {
		return "", fmt.Errorf("%s: %w", path, ErrBinary)
	}
	return Normalize(string(bytes.TrimPrefix(data, bom))), nil
}

func Normalize(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// IsBinary guesses from the first few KiB: a NUL byte or invalid UTF-8
// means binary.
func IsBinary(data []byte) bool {
	head := data[:min(len(data), 8<<10)]
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	// a multi-byte rune may straddle the cut
	if len(head) < len(data) {
		for i := 1; i <= utf8.UTFMax && i <= len(head); i++ {
			if tail := head[len(head)-i:]; utf8.RuneStart(tail[0]) {
				if !utf8.FullRune(tail) {
					head = head[:len(head)-i]
				}
				break
			}
		}
	}
	return !utf8.Valid(head)
}

// FirstLine returns text up to its first line break.
func FirstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
