package trimmer

import (
	"sort"
)

// renameKey addresses one (side, X, Y) bucket's local rename table.
type renameKey struct {
	side uint8
	x, y uint32
}

// RenameTable maps a renamed id, local to one (side,X,Y) bucket, back to the
// original value it replaced. Two instances chain together across the two
// compression rounds: RenameTable1 maps a 15-bit id back to a raw Z value,
// RenameTable2 maps a 9-bit id back to a RenameTable1 id. Composing the two
// lookups in order reconstructs the original (Y,Z) pair for recovery.
type RenameTable struct {
	bits    int
	entries map[renameKey][]uint32
}

func newRenameTable(bits int) *RenameTable {
	return &RenameTable{bits: bits, entries: make(map[renameKey][]uint32)}
}

// assign gives every distinct value in vals a fresh, sorted-order id local to
// (side,x,y), returning a lookup from original value to its assigned id. The
// sort makes the assignment deterministic given the same survivor set,
// independent of the order trimming happened to discover them in.
func (t *RenameTable) assign(side uint8, x, y uint32, vals []uint32) (map[uint32]uint32, error) {
	distinct := make(map[uint32]struct{}, len(vals))
	for _, v := range vals {
		distinct[v] = struct{}{}
	}
	sorted := make([]uint32, 0, len(distinct))
	for v := range distinct {
		sorted = append(sorted, v)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	limit := 1 << uint(t.bits)
	if len(sorted) > limit {
		return nil, &ErrRenameExhausted{
			Side:  sideName(side),
			X:     x,
			Y:     y,
			Count: len(sorted),
			Limit: limit,
		}
	}

	key := renameKey{side: side, x: x, y: y}
	t.entries[key] = sorted

	forward := make(map[uint32]uint32, len(sorted))
	for id, v := range sorted {
		forward[v] = uint32(id)
	}
	return forward, nil
}

// Lookup reverses a renamed id back to the original value it replaced.
func (t *RenameTable) Lookup(side uint8, x, y uint32, renamedID uint32) (uint32, bool) {
	entry, ok := t.entries[renameKey{side: side, x: x, y: y}]
	if !ok || int(renamedID) >= len(entry) {
		return 0, false
	}
	return entry[renamedID], true
}

// Bits reports the id width this table was constructed for.
func (t *RenameTable) Bits() int { return t.bits }

func sideName(side uint8) string {
	if side == sideU {
		return "U"
	}
	return "V"
}
