package trimmer

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// arena is the byte-addressable backing store for one trimmer context's
// bucket matrix. It is a single memory-mapped region, file-backed by an
// anonymous temporary file the same way index_writer.go pre-sizes and maps
// its payload region up front; ftruncate'ing the file to the target size
// before mapping avoids growing the mapping piecemeal, and Close releases
// both the mapping and the backing file.
type arena struct {
	file *os.File
	mm   mmap.MMap
	data []byte
}

// newArena creates a size-byte memory-mapped scratch region backed by a
// temporary file, and attempts to pin it in physical memory (best-effort;
// see arena_linux.go / arena_other.go).
func newArena(size int) (*arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("trimmer: arena size must be positive, got %d", size)
	}
	f, err := os.CreateTemp("", "cuckoo-trimmer-*")
	if err != nil {
		return nil, fmt.Errorf("trimmer: creating arena backing file: %w", err)
	}
	// The backing file is unlinked immediately: once mapped, its pages
	// live as long as the mapping does, and we never need to find it by
	// name again. Only possible on POSIX filesystems, which is the only
	// target this solver cares about.
	name := f.Name()
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(name)
		return nil, fmt.Errorf("trimmer: truncating arena backing file: %w", err)
	}
	mm, err := mmap.MapRegion(f, size, mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		os.Remove(name)
		return nil, fmt.Errorf("trimmer: mapping arena: %w", err)
	}
	a := &arena{file: f, mm: mm, data: []byte(mm)}
	lockArena(a.data) // best-effort; logged, never fatal
	os.Remove(name)
	return a, nil
}

// Bytes returns the full backing slice.
func (a *arena) Bytes() []byte {
	return a.data
}

// Close unmaps and releases the arena's backing file.
func (a *arena) Close() error {
	unlockArena(a.data)
	if err := a.mm.Unmap(); err != nil {
		a.file.Close()
		return fmt.Errorf("trimmer: unmapping arena: %w", err)
	}
	return a.file.Close()
}
