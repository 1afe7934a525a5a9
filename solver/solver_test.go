package solver

import (
	"testing"

	"github.com/Scramblecoin/cuckoo/params"
	"github.com/Scramblecoin/cuckoo/siphash"
	"github.com/Scramblecoin/cuckoo/verify"
)

func TestSolveReturnsOnlyVerifiableProofs(t *testing.T) {
	p, err := params.New(16, params.WithNumThreads(2))
	if err != nil {
		t.Fatalf("params.New: %v", err)
	}
	header := []byte("solver-toy-header")

	proofs, err := Solve(p, header)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	keys, err := siphash.DeriveKeys(header)
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}
	for i, pr := range proofs {
		if len(pr.Nonces) != params.ProofSize {
			t.Fatalf("proof %d has %d nonces, want %d", i, len(pr.Nonces), params.ProofSize)
		}
		if err := verify.Verify(p, keys, pr.Nonces); err != nil {
			t.Fatalf("proof %d failed independent verification: %v", i, err)
		}
	}
}

func TestSolveIsDeterministicForTheSameHeader(t *testing.T) {
	p, err := params.New(16, params.WithNumThreads(2))
	if err != nil {
		t.Fatalf("params.New: %v", err)
	}
	header := []byte("solver-determinism-header")

	first, err := Solve(p, header)
	if err != nil {
		t.Fatalf("Solve (first): %v", err)
	}
	second, err := Solve(p, header)
	if err != nil {
		t.Fatalf("Solve (second): %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("Solve returned %d proofs first run, %d second run", len(first), len(second))
	}
	for i := range first {
		if len(first[i].Nonces) != len(second[i].Nonces) {
			t.Fatalf("proof %d: nonce count differs between runs", i)
		}
		for j := range first[i].Nonces {
			if first[i].Nonces[j] != second[i].Nonces[j] {
				t.Fatalf("proof %d nonce %d differs between runs: %d vs %d", i, j, first[i].Nonces[j], second[i].Nonces[j])
			}
		}
	}
}
