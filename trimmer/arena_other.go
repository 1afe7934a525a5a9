//go:build !linux

package trimmer

// lockArena is a no-op on platforms where we do not have a vetted mlock
// path wired up; the arena still works correctly, it simply is not pinned
// against swapping.
func lockArena(data []byte) {}

// unlockArena is the paired no-op for lockArena.
func unlockArena(data []byte) {}
