package cycle

import "testing"

func TestMaxPathLenGrowsWithEdgeBits(t *testing.T) {
	small := MaxPathLen(8)
	large := MaxPathLen(29)
	if large <= small {
		t.Fatalf("MaxPathLen(29)=%d should exceed MaxPathLen(8)=%d", large, small)
	}
}

func TestFindCyclesDetectsSimpleLoop(t *testing.T) {
	// Nodes 0..3 wired into a single 4-edge loop: 0-1-2-3-0.
	f := New(8, 4, 16)
	edges := []Edge{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

	cycles, err := f.FindCycles(edges)
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 1 {
		t.Fatalf("expected exactly 1 cycle, got %d", len(cycles))
	}
	if len(cycles[0]) != 4 {
		t.Fatalf("expected a 4-edge cycle, got %d edges", len(cycles[0]))
	}
}

func TestFindCyclesIgnoresNonClosingEdges(t *testing.T) {
	// A simple path, never closing into a cycle of the target length.
	f := New(8, 4, 16)
	edges := []Edge{{0, 1}, {1, 2}, {2, 3}}

	cycles, err := f.FindCycles(edges)
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %d", len(cycles))
	}
}

func TestFindCyclesRejectsWrongLengthLoop(t *testing.T) {
	// 0-1-2-0 closes a 3-edge loop; proofSize is set to 4, so it must not
	// be reported.
	f := New(8, 4, 16)
	edges := []Edge{{0, 1}, {1, 2}, {2, 0}}

	cycles, err := f.FindCycles(edges)
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles for a mismatched-length loop, got %d", len(cycles))
	}
}

func TestPathTooLongIsReported(t *testing.T) {
	f := New(8, 4, 2)
	edges := []Edge{{0, 1}, {1, 2}, {2, 3}}
	if _, err := f.FindCycles(edges); err == nil {
		t.Fatalf("expected ErrPathTooLong once the forest path exceeds the tiny cap")
	}
}
