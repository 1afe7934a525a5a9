package trimmer

import "testing"

func TestDeltaRoundTripIncreasingStream(t *testing.T) {
	const prefixBits = 10
	mask := uint64(1<<prefixBits) - 1
	lag := mask >> 2
	maxGap := mask - lag

	enc := newDeltaCodec(prefixBits)
	dec := newDeltaCodec(prefixBits)

	nonce := uint64(0)
	var stream []uint64
	for i := 0; i < 200; i++ {
		gap := (uint64(i)*37 + 1) % maxGap
		if gap == 0 {
			gap = 1
		}
		nonce += gap
		stream = append(stream, nonce)
	}

	for _, n := range stream {
		delta := enc.encode(n)
		got := dec.decode(delta)
		if got != n {
			t.Fatalf("round trip mismatch: encoded %d, decoded %d", n, got)
		}
	}
}

func TestDeltaEncodeResetsToZero(t *testing.T) {
	enc := newDeltaCodec(8)
	enc.encode(100)
	enc.reset()
	got := enc.encode(5)
	if got != 5 {
		t.Fatalf("after reset, first delta should equal the nonce itself, got %d", got)
	}
}

func TestDeltaDecodeHandlesBackwardCorrection(t *testing.T) {
	const prefixBits = 8
	mask := uint64(1<<prefixBits) - 1
	enc := newDeltaCodec(prefixBits)
	dec := newDeltaCodec(prefixBits)

	// Two interleaved nonce-ordered source columns merged into one
	// destination bucket out of global nonce order: 10, 200, 195 (a
	// small backward step relative to 200, landing in the lag window).
	for _, n := range []uint64{10, 200, 195} {
		delta := enc.encode(n)
		got := dec.decode(delta)
		if got != n {
			t.Fatalf("expected %d, got %d (delta=%d, mask=%d)", n, got, delta, mask)
		}
	}
}
