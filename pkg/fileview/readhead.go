package fileview

import (
	"errors"
	"io"
	"os"
)

// ReadHead reads up to n bytes from the start of path without loading
// or mapping the whole file, for the classifier's bounded magic-byte
// sniff (spec §4.3 "a bounded 1KiB read").
func ReadHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:read], nil
}
