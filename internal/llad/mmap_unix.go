//go:build linux || darwin

package llad

import (
	"os"

	"golang.org/x/sys/unix"
)

// mappedFile holds an mmap'd file's backing slice, which stays mapped
// until Unmap is called.
type mappedFile struct {
	data []byte
}

func mmapFile(f *os.File, size int64) (*mappedFile, error) {
	if size == 0 {
		return &mappedFile{data: nil}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &mappedFile{data: data}, nil
}

func (m *mappedFile) Unmap() error {
	if m.data == nil {
		return nil
	}
	return unix.Munmap(m.data)
}
