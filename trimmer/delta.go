package trimmer

// Delta-encoding of edge nonces within a bucket.
//
// A bucket record never stores a record's full nonce: instead it stores the
// difference from the last nonce written to the same addressing column,
// masked to prefixBits bits. Because re-bucketing across rounds can cause
// records from several different source sub-buckets to interleave at the
// destination (each individually nonce-ordered, but not globally ordered
// once merged), an apparent "delta" occasionally has to express a small
// backward step rather than a forward one. A masked unsigned delta in the
// top quarter of its range ((mask-lag, mask]) is therefore reinterpreted as
// a small negative step that wrapped modulo (mask+1); this quarter is the
// "lag window" L = mask>>2.
type deltaCodec struct {
	prefixBits uint
	mask       uint64
	lag        uint64
	prev       uint64
}

func newDeltaCodec(prefixBits uint) *deltaCodec {
	mask := (uint64(1) << prefixBits) - 1
	return &deltaCodec{
		prefixBits: prefixBits,
		mask:       mask,
		lag:        mask >> 2,
	}
}

// reset rewinds the codec's running "previous nonce" state to zero, as at
// the start of a fresh bucket scan.
func (d *deltaCodec) reset() {
	d.prev = 0
}

// encode returns the masked delta between nonce and the last nonce passed to
// encode (0 on the first call after reset), and advances the running state.
func (d *deltaCodec) encode(nonce uint64) uint64 {
	delta := (nonce - d.prev) & d.mask
	d.prev = nonce
	return delta
}

// decode reconstructs the next nonce from a masked delta, advancing the
// codec's running state the same way encode did when it produced delta.
func (d *deltaCodec) decode(delta uint64) uint64 {
	var signed int64
	if delta > d.mask-d.lag {
		signed = int64(delta) - int64(d.mask+1)
	} else {
		signed = int64(delta)
	}
	next := uint64(int64(d.prev) + signed)
	d.prev = next
	return next
}
