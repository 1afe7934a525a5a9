package recovery

import (
	"testing"

	"github.com/Scramblecoin/cuckoo/cycle"
	"github.com/Scramblecoin/cuckoo/params"
	"github.com/Scramblecoin/cuckoo/siphash"
	"github.com/Scramblecoin/cuckoo/trimmer"
)

func runToyTrim(t *testing.T, edgeBits uint32, header string) (*params.Params, siphash.Keys, *trimmer.Result) {
	t.Helper()
	p, err := params.New(edgeBits, params.WithNumThreads(2))
	if err != nil {
		t.Fatalf("params.New: %v", err)
	}
	keys, err := siphash.DeriveKeys([]byte(header))
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}
	res, err := trimmer.New(p, keys).Run()
	if err != nil {
		t.Fatalf("trimmer.Run: %v", err)
	}
	return p, keys, res
}

func TestRecoverRejectsWrongProofLength(t *testing.T) {
	p, keys, res := runToyTrim(t, 11, "recovery-length-header")
	if len(res.Edges) == 0 {
		t.Skip("toy graph trimmed to zero surviving edges")
	}

	cyc := []cycle.Edge{{A: res.Edges[0].U, B: res.Edges[0].V}}
	if _, err := Recover(p, keys, res.RenameTable1, res.RenameTable2, cyc); err == nil {
		t.Fatalf("expected an error for a cycle shorter than params.ProofSize")
	}
}

// TestRecoverInvertsRealTrimmedEdges exercises the full decompose ->
// rename-table inversion -> re-enumeration path against real trimmed
// edges and real rename tables, without requiring the edges to actually
// form a graph cycle: Recover only cares about matching endpoint pairs,
// which a slice of genuinely surviving trimmed edges satisfies exactly.
func TestRecoverInvertsRealTrimmedEdges(t *testing.T) {
	p, keys, res := runToyTrim(t, 16, "recovery-roundtrip-header")
	if len(res.Edges) < params.ProofSize {
		t.Skipf("only %d edges survived trimming, need >= %d", len(res.Edges), params.ProofSize)
	}

	cyc := make([]cycle.Edge, params.ProofSize)
	for i := 0; i < params.ProofSize; i++ {
		cyc[i] = cycle.Edge{A: res.Edges[i].U, B: res.Edges[i].V}
	}

	nonces, err := Recover(p, keys, res.RenameTable1, res.RenameTable2, cyc)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if len(nonces) != params.ProofSize {
		t.Fatalf("expected %d recovered nonces, got %d", params.ProofSize, len(nonces))
	}

	mask := p.EdgeMask()
	for i, nonce := range nonces {
		if i > 0 && nonces[i-1] > nonce {
			t.Fatalf("recovered nonces not sorted ascending: %v", nonces)
		}
		if nonce >= p.NumEdges() {
			t.Fatalf("recovered nonce %d out of range", nonce)
		}
		_ = siphash.EdgeHash(keys, nonce, siphash.SideU, mask)
	}
}
