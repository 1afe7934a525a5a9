// Package recovery maps a 42-edge cycle, expressed in the trimmer's
// compressed node ids, back to the original edge nonces that produced it.
//
// The trimmer discards everything except a compressed node id for each
// surviving edge endpoint, trading full nonce tracking for a pair of
// rename tables recovery must invert. Recovery undoes that compression in
// two steps - the second-level table maps a 9-bit id back to a 15-bit one,
// the first-level table maps that back to the raw Z residue - and then
// re-enumerates every edge nonce once, checking whether its hashed
// endpoints match one of the 42 target pairs.
package recovery

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/Scramblecoin/cuckoo/cycle"
	"github.com/Scramblecoin/cuckoo/params"
	"github.com/Scramblecoin/cuckoo/siphash"
	"github.com/Scramblecoin/cuckoo/trimmer"
	"github.com/zeebo/xxh3"
)

// ErrIncompleteRecovery indicates the re-enumeration pass over every edge
// nonce failed to fill one or more of the proof's slots: the supplied
// cycle does not correspond to a consistent set of edges under the given
// header keys.
type ErrIncompleteRecovery struct {
	Missing int
	Want    int
}

func (e *ErrIncompleteRecovery) Error() string {
	return fmt.Sprintf("recovery: re-enumeration filled %d/%d proof slots", e.Want-e.Missing, e.Want)
}

// decompose reverses trimmer.CompressedID, splitting a compressed node id
// back into the side it was built for and its local (x,y,renamedZ2)
// bucket address.
func decompose(p *params.Params, id uint32) (side uint8, x, y, z2 uint32) {
	perSide := p.NX() * p.NY() * (1 << params.SecondRenameBits)
	side = uint8(id / perSide)
	local := id % perSide
	xy := local / (1 << params.SecondRenameBits)
	z2 = local % (1 << params.SecondRenameBits)
	x = xy / p.NY()
	y = xy % p.NY()
	return side, x, y, z2
}

// fullNode resolves a compressed node id back to its raw masked E-bit hash
// value by composing the two rename-table lookups (Z2 -> Z1 -> Z) and
// reassembling (X,Y,Z) into a single value.
func fullNode(p *params.Params, rt1, rt2 *trimmer.RenameTable, id uint32) (side uint8, hash uint64, err error) {
	side, x, y, z2 := decompose(p, id)
	z1, ok := rt2.Lookup(side, x, y, z2)
	if !ok {
		return side, 0, fmt.Errorf("recovery: second-level rename miss for side=%d x=%d y=%d id=%d", side, x, y, z2)
	}
	z, ok := rt1.Lookup(side, x, y, z1)
	if !ok {
		return side, 0, fmt.Errorf("recovery: first-level rename miss for side=%d x=%d y=%d id=%d", side, x, y, z1)
	}
	hash = (uint64(x) << (p.YBits + p.ZBits)) | (uint64(y) << p.ZBits) | uint64(z)
	return side, hash, nil
}

// target is one of the proof's endpoint pairs being searched for during
// re-enumeration, recorded against the proof slot it fills.
type target struct {
	u, v uint64
	slot int
}

func packPair(u, v uint64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], u)
	binary.LittleEndian.PutUint64(buf[8:16], v)
	return buf
}

// Recover maps a 42-edge cycle, expressed in compressed node ids, back to
// the 42 original edge nonces that produced it, sorted ascending.
func Recover(p *params.Params, keys siphash.Keys, rt1, rt2 *trimmer.RenameTable, cyc []cycle.Edge) ([]uint64, error) {
	if len(cyc) != params.ProofSize {
		return nil, fmt.Errorf("recovery: cycle has %d edges, want %d", len(cyc), params.ProofSize)
	}

	// xxh3 keys the target-pair lookup so the re-enumeration pass below is
	// an O(1) expected check per candidate nonce instead of a 42-entry
	// linear scan.
	targets := make(map[uint64][]target, params.ProofSize)
	for slot, e := range cyc {
		sideA, hashA, err := fullNode(p, rt1, rt2, e.A)
		if err != nil {
			return nil, err
		}
		_, hashB, err := fullNode(p, rt1, rt2, e.B)
		if err != nil {
			return nil, err
		}
		var u, v uint64
		if sideA == 0 {
			u, v = hashA, hashB
		} else {
			u, v = hashB, hashA
		}
		key := xxh3.Hash(packPair(u, v))
		targets[key] = append(targets[key], target{u: u, v: v, slot: slot})
	}

	mask := p.EdgeMask()
	proof := make([]uint64, params.ProofSize)
	filled := make([]bool, params.ProofSize)
	remaining := params.ProofSize

	for nonce := uint64(0); nonce < p.NumEdges() && remaining > 0; nonce++ {
		u := siphash.EdgeHash(keys, nonce, siphash.SideU, mask)
		v := siphash.EdgeHash(keys, nonce, siphash.SideV, mask)
		key := xxh3.Hash(packPair(u, v))
		for _, t := range targets[key] {
			if t.u == u && t.v == v && !filled[t.slot] {
				proof[t.slot] = nonce
				filled[t.slot] = true
				remaining--
			}
		}
	}

	if remaining > 0 {
		return nil, &ErrIncompleteRecovery{Missing: remaining, Want: params.ProofSize}
	}

	sort.Slice(proof, func(i, j int) bool { return proof[i] < proof[j] })
	return proof, nil
}
