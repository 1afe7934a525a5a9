//go:build linux

package trimmer

import (
	"log"

	"golang.org/x/sys/unix"
)

// lockArena pins the arena's backing pages in physical memory so the
// memory-hard working set is never swapped out mid-solve. Failure (e.g. the
// process lacks CAP_IPC_LOCK or exceeds RLIMIT_MEMLOCK) is logged and
// otherwise ignored: mlock is an optimization, not a correctness
// requirement.
func lockArena(data []byte) {
	if len(data) == 0 {
		return
	}
	if err := unix.Mlock(data); err != nil {
		log.Printf("trimmer: mlock arena (%d bytes) failed, continuing without pinning: %v", len(data), err)
	}
}

// unlockArena releases a pinned arena prior to unmapping it.
func unlockArena(data []byte) {
	if len(data) == 0 {
		return
	}
	if err := unix.Munlock(data); err != nil {
		log.Printf("trimmer: munlock arena failed: %v", err)
	}
}
