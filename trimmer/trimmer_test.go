package trimmer

import (
	"testing"

	"github.com/Scramblecoin/cuckoo/params"
	"github.com/Scramblecoin/cuckoo/siphash"
)

func testKeys(t *testing.T, header string) siphash.Keys {
	t.Helper()
	k, err := siphash.DeriveKeys([]byte(header))
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}
	return k
}

func TestRunProducesConsistentlyRenamedEdges(t *testing.T) {
	p, err := params.New(11, params.WithNumThreads(2))
	if err != nil {
		t.Fatalf("params.New: %v", err)
	}
	keys := testKeys(t, "trimmer-toy-header")

	res, err := New(p, keys).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	maxID := p.NX() * p.NY() * (1 << params.SecondRenameBits) * 2
	for _, e := range res.Edges {
		if e.U >= maxID || e.V >= maxID {
			t.Fatalf("compressed id out of domain: U=%d V=%d max=%d", e.U, e.V, maxID)
		}
	}
}

// TestRenameLadderInvertsToOriginalZ exercises the composed rename-table
// lookup recovery depends on: given a trimmed edge's second-level id for a
// side, RenameTable2 maps it back to the first-level id, and RenameTable1
// maps that back to the original Z residue the edge's nonce hashes to.
func TestRenameLadderInvertsToOriginalZ(t *testing.T) {
	p, err := params.New(11, params.WithNumThreads(2))
	if err != nil {
		t.Fatalf("params.New: %v", err)
	}
	keys := testKeys(t, "rename-ladder-header")

	res, err := New(p, keys).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Edges) == 0 {
		t.Skip("toy graph trimmed to zero surviving edges")
	}

	mask := p.EdgeMask()
	perSide := p.NX() * p.NY() * (1 << params.SecondRenameBits)

	for _, e := range res.Edges {
		uLocal := e.U % perSide
		uxy := uLocal / (1 << params.SecondRenameBits)
		uRenamed2 := uLocal % (1 << params.SecondRenameBits)
		ux := uxy / p.NY()
		uy := uxy % p.NY()

		renamed1, ok := res.RenameTable2.Lookup(sideU, ux, uy, uRenamed2)
		if !ok {
			t.Fatalf("RenameTable2 lookup miss for U side (x=%d,y=%d,id=%d)", ux, uy, uRenamed2)
		}
		origZ, ok := res.RenameTable1.Lookup(sideU, ux, uy, renamed1)
		if !ok {
			t.Fatalf("RenameTable1 lookup miss for U side (x=%d,y=%d,id=%d)", ux, uy, renamed1)
		}

		found := false
		for nonce := uint64(0); nonce < p.NumEdges(); nonce++ {
			h := siphash.EdgeHash(keys, nonce, siphash.SideU, mask)
			x, y, z := fieldsOf(p, h)
			if x == ux && y == uy && z == origZ {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("no nonce hashes to the recovered (x=%d,y=%d,z=%d)", ux, uy, origZ)
		}
	}
}
