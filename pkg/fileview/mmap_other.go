//go:build !unix

package fileview

import "os"

// mmapFile falls back to a plain read on non-Unix platforms, where
// x/sys/unix's Mmap is unavailable; callers still get a Mapped-shaped
// []byte, just backed by a heap copy instead of a real mapping.
func mmapFile(path string, size int64) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
