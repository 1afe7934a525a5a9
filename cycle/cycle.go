// Package cycle implements the forest-path cycle finder that turns a
// trimmer's compact surviving-edge list into 42-edge cycle proofs.
//
// The algorithm maintains a single array C, indexed by compressed node id,
// where C[x] = y means the trimmed edge between x and y is currently part
// of a matching forest. Each new trimmed edge either closes a cycle
// (both endpoints' root-ward paths meet) or extends the forest by
// re-pointing the shorter of the two paths onto the new edge. This is the
// same union-find-by-path-reversal shape the original miner's cuckoo.h
// uses, adapted to Go slices and explicit error returns in place of a
// hard process abort on a pathologically long path.
package cycle

import "fmt"

const nilNode = ^uint32(0)

// ErrPathTooLong indicates the forest-path walk exceeded its configured
// cap, a sign of upstream corruption (the forest should never contain a
// path longer than a small multiple of the cube root of the node count).
type ErrPathTooLong struct {
	Node  uint32
	Limit int
}

func (e *ErrPathTooLong) Error() string {
	return fmt.Sprintf("cycle: path from node %d exceeded cap of %d - forest likely corrupt", e.Node, e.Limit)
}

// MaxPathLen derives the forest-path cap for a given edge-bit count,
// scaling with the cube root of the node count the way the reference
// MAXPATHLEN constant does.
func MaxPathLen(edgeBits uint32) int {
	n := 1
	for i := uint32(0); i < (edgeBits+3)/3; i++ {
		n *= 2
	}
	return 8 * n
}

// Edge is one edge of a reported cycle, expressed as the pair of
// compressed node ids it connects.
type Edge struct {
	A, B uint32
}

// Finder holds one solve's matching forest. It is single-use: construct a
// fresh Finder per solve via New.
type Finder struct {
	table       []uint32
	maxPathLen  int
	proofSize   int
	us, vs      []uint32
}

// New allocates a Finder over the given compressed-id domain size
// (2*NX*NY*2^SecondRenameBits in the trimmer's numbering), ready to
// process edges in search of cycles of exactly proofSize edges.
func New(domainSize uint32, proofSize, maxPathLen int) *Finder {
	table := make([]uint32, domainSize)
	for i := range table {
		table[i] = nilNode
	}
	return &Finder{
		table:      table,
		maxPathLen: maxPathLen,
		proofSize:  proofSize,
		us:         make([]uint32, maxPathLen),
		vs:         make([]uint32, maxPathLen),
	}
}

// path walks C from x to its root, recording every node visited (including
// x itself) into f.us or f.vs, and returns the number of nodes recorded.
// The root is the last node recorded, the one whose C-entry is nilNode.
func (f *Finder) path(x uint32, out []uint32) (int, error) {
	n := 0
	for x != nilNode {
		if n >= len(out) {
			return n, &ErrPathTooLong{Node: x, Limit: len(out)}
		}
		out[n] = x
		n++
		x = f.table[x]
	}
	return n, nil
}

// FindCycles feeds every trimmed edge through the matching forest in
// order, extending the forest on each non-closing edge and recording a
// proof whenever a closing edge yields a cycle of exactly proofSize
// edges. Distinct qualifying cycles (there can rarely be more than one in
// a single trimmed graph) are all returned; a given cycle is recorded once,
// the first time its closing edge is processed.
func (f *Finder) FindCycles(edges []Edge) ([][]Edge, error) {
	var cycles [][]Edge

	for _, e := range edges {
		u0, v0 := e.A, e.B

		nu, err := f.path(u0, f.us)
		if err != nil {
			return cycles, err
		}
		nv, err := f.path(v0, f.vs)
		if err != nil {
			return cycles, err
		}

		if f.us[nu-1] == f.vs[nv-1] {
			min := nu
			if nv < min {
				min = nv
			}
			i, j := nu-min, nv-min
			for f.us[i] != f.vs[j] {
				i++
				j++
			}
			length := i + j + 1
			if length == f.proofSize {
				cycle := make([]Edge, 0, length)
				for k := 0; k < i; k++ {
					cycle = append(cycle, Edge{f.us[k], f.us[k+1]})
				}
				for k := j; k > 0; k-- {
					cycle = append(cycle, Edge{f.vs[k], f.vs[k-1]})
				}
				cycle = append(cycle, Edge{u0, v0})
				cycles = append(cycles, cycle)
			}
			continue
		}

		if nu < nv {
			// Reverse the shorter (U-side) path so it points away from its
			// old root, then attach its former start to v0.
			for k := nu - 2; k >= 0; k-- {
				f.table[f.us[k+1]] = f.us[k]
			}
			f.table[u0] = v0
		} else {
			for k := nv - 2; k >= 0; k-- {
				f.table[f.vs[k+1]] = f.vs[k]
			}
			f.table[v0] = u0
		}
	}

	return cycles, nil
}
