package params

import "testing"

func TestNewDerivesConsistentBitLayout(t *testing.T) {
	p, err := New(29)
	if err != nil {
		t.Fatalf("New(29) returned error: %v", err)
	}
	if p.XBits != p.YBits {
		t.Fatalf("XBits (%d) must equal YBits (%d)", p.XBits, p.YBits)
	}
	if got, want := p.XBits+p.YBits+p.ZBits, p.EdgeBits; got != want {
		t.Fatalf("X+Y+Z bits = %d, want EdgeBits = %d", got, want)
	}
	if p.NumTrims&1 != 0 {
		t.Fatalf("NumTrims must be even, got %d", p.NumTrims)
	}
	if p.CompressRound >= p.SecondCompressRound {
		t.Fatalf("CompressRound (%d) must precede SecondCompressRound (%d)", p.CompressRound, p.SecondCompressRound)
	}
	if p.ExpandRound >= p.CompressRound {
		t.Fatalf("ExpandRound (%d) must precede CompressRound (%d)", p.ExpandRound, p.CompressRound)
	}
}

func TestNewToyEdgeBits(t *testing.T) {
	p, err := New(11)
	if err != nil {
		t.Fatalf("New(11) returned error: %v", err)
	}
	if p.NX() != 1<<p.XBits {
		t.Fatalf("NX() = %d, want %d", p.NX(), 1<<p.XBits)
	}
	if p.BucketCapacity == 0 {
		t.Fatalf("BucketCapacity must be positive")
	}
}

func TestNewRejectsDegenerateEdgeBits(t *testing.T) {
	if _, err := New(2); err == nil {
		t.Fatalf("expected error for degenerate edgeBits")
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	p, err := New(16, WithNumThreads(3), WithNumTrims(20), WithXBits(4))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if p.NumThreads != 3 {
		t.Fatalf("NumThreads = %d, want 3", p.NumThreads)
	}
	if p.NumTrims < 20 {
		t.Fatalf("NumTrims = %d, want >= 20", p.NumTrims)
	}
	if p.XBits != 4 {
		t.Fatalf("XBits = %d, want 4", p.XBits)
	}
}

func TestBucketCapacityScalesWithOccupancy(t *testing.T) {
	small, err := New(16)
	if err != nil {
		t.Fatal(err)
	}
	large, err := New(24)
	if err != nil {
		t.Fatal(err)
	}
	meanSmall := float64(small.NumEdges()) / float64(small.NX())
	meanLarge := float64(large.NumEdges()) / float64(large.NX())
	if meanLarge <= meanSmall {
		t.Fatalf("expected larger mean occupancy for bigger EdgeBits")
	}
	if large.BucketCapacity <= small.BucketCapacity {
		t.Fatalf("expected larger bucket capacity for bigger EdgeBits")
	}
}
