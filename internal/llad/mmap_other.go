//go:build !linux && !darwin

package llad

import "os"

// mappedFile falls back to a plain read on platforms without a mmap
// syscall wired up (spec.md §6's mmap-backed reader is an optimization;
// correctness never depends on it).
type mappedFile struct {
	data []byte
}

func mmapFile(f *os.File, size int64) (*mappedFile, error) {
	if size == 0 {
		return &mappedFile{data: nil}, nil
	}
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil {
		return nil, err
	}
	return &mappedFile{data: data}, nil
}

func (m *mappedFile) Unmap() error { return nil }
