package verify

import (
	"testing"

	"github.com/Scramblecoin/cuckoo/params"
	"github.com/Scramblecoin/cuckoo/siphash"
)

func testSetup(t *testing.T) (*params.Params, siphash.Keys) {
	t.Helper()
	p, err := params.New(16)
	if err != nil {
		t.Fatalf("params.New: %v", err)
	}
	keys, err := siphash.DeriveKeys([]byte("verify-test-header"))
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}
	return p, keys
}

func TestVerifyRejectsWrongLength(t *testing.T) {
	p, keys := testSetup(t)
	if err := Verify(p, keys, []uint64{0, 1, 2}); err == nil {
		t.Fatalf("expected an error for a proof shorter than params.ProofSize")
	}
}

func TestVerifyRejectsUnsortedNonces(t *testing.T) {
	p, keys := testSetup(t)
	nonces := make([]uint64, params.ProofSize)
	for i := range nonces {
		nonces[i] = uint64(params.ProofSize - i) // strictly descending
	}
	if err := Verify(p, keys, nonces); err == nil {
		t.Fatalf("expected an error for non-ascending nonces")
	}
}

func TestVerifyRejectsArbitraryNonCycle(t *testing.T) {
	p, keys := testSetup(t)
	// 42 arbitrary ascending nonces chosen without regard for whether their
	// edges close into a cycle; astronomically unlikely to happen to form
	// one by chance, so Verify must reject them.
	nonces := make([]uint64, params.ProofSize)
	for i := range nonces {
		nonces[i] = uint64(i * 7)
	}
	if err := Verify(p, keys, nonces); err == nil {
		t.Fatalf("expected an error for nonces with no reason to form a cycle")
	}
}

func TestCyclehashDeterministicAndSensitive(t *testing.T) {
	a := make([]uint64, params.ProofSize)
	b := make([]uint64, params.ProofSize)
	for i := range a {
		a[i] = uint64(i)
		b[i] = uint64(i)
	}
	b[0] = 999

	h1 := Cyclehash(a)
	h2 := Cyclehash(a)
	if h1 != h2 {
		t.Fatalf("Cyclehash must be deterministic for the same input")
	}
	h3 := Cyclehash(b)
	if h1 == h3 {
		t.Fatalf("Cyclehash must differ for a different proof")
	}
}
