package readfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "empty file",
			in:   "",
			out:  "",
		},
		{
			name: "unix newlines",
			in:   "one\ntwo\n",
			out:  "one\ntwo\n",
		},
		{
			name: "windows newlines",
			in:   "one\r\ntwo\r\n",
			out:  "one\ntwo\n",
		},
		{
			name: "classic mac newlines",
			in:   "a\rb\n\r\n",
			out:  "a\nb\n\n",
		},
		{
			name: "byte order mark",
			in:   "\xEF\xBB\xBFkey: value\n",
			out:  "key: value\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "input.txt")
			if err := os.WriteFile(path, []byte(tc.in), 0o644); err != nil {
				t.Fatalf("write temp file: %v", err)
			}

			got, err := ReadNormalized(path)
			if err != nil {
				t.Fatalf("ReadNormalized: %v", err)
			}
			if got != tc.out {
				t.Fatalf("got %q want %q", got, tc.out)
			}
		})
	}
}

func TestReadNormalizedRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	if err := os.WriteFile(path, []byte{'E', 'L', 'F', 0, 1}, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := ReadNormalized(path); !errors.Is(err, ErrBinary) {
		t.Fatalf("err = %v, want ErrBinary", err)
	}
	if _, err := ReadNormalized(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("héllo")) {
		t.Fatal("utf-8 text reported binary")
	}
	if !IsBinary([]byte{0xff, 0xfe, 'a'}) {
		t.Fatal("invalid utf-8 not reported binary")
	}

	// a rune cut at the sniffing boundary is still text
	data := make([]byte, 8<<10-1)
	for i := range data {
		data[i] = 'a'
	}
	data = append(data, "é"...)
	if IsBinary(data) {
		t.Fatal("rune split at boundary reported binary")
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("#!/bin/sh\necho"); got != "#!/bin/sh" {
		t.Fatalf("got %q", got)
	}
	if got := FirstLine("single"); got != "single" {
		t.Fatalf("got %q", got)
	}
}
