//go:build unix

package fileview

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps the first size bytes of path read-only, grounded on
// the retrieved scanner's ScanFile (os.Open, unix.Mmap PROT_READ,
// MAP_SHARED, paired Munmap release).
func mmapFile(path string, size int64) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	if size == 0 {
		return []byte{}, func() error { return nil }, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
