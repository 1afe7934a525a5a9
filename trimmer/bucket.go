package trimmer

import "github.com/Scramblecoin/cuckoo/params"

// fieldsOf splits a masked side-hash value into its (X,Y,Z) bucket address,
// mirroring the BUCKETBITS/YZBITS layout in params.Params: the low ZBits
// select the fine residue, the next YBits select the bucket column, and the
// remaining high bits select the bucket row.
func fieldsOf(p *params.Params, hash uint64) (x, y, z uint32) {
	z = uint32(hash) & p.ZMask()
	y = uint32(hash>>p.ZBits) & ((1 << p.YBits) - 1)
	x = uint32(hash>>(p.ZBits+p.YBits)) & ((1 << p.XBits) - 1)
	return x, y, z
}

// packUint writes the low width*8 bits of v into buf in little-endian order.
// width is not required to be a power of two; the trimmer uses 5- and
// 6-byte slot widths before and after the expand round, matching the slot
// growth the original miner performs once nonce deltas start exceeding a
// 5-byte budget.
func packUint(buf []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		buf[i] = byte(v >> (8 * uint(i)))
	}
}

// unpackUint is packUint's inverse.
func unpackUint(buf []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(buf[i]) << (8 * uint(i))
	}
	return v
}

// slotWidth returns the record width in bytes in effect for the given round:
// 5 bytes before ExpandRound, 6 bytes from ExpandRound on, enough to cover a
// masked delta under the wider lag window used once records have been
// through several rounds of reshuffling.
func slotWidth(p *params.Params, round int) int {
	if round < p.ExpandRound {
		return 5
	}
	return 6
}

// edgeRecord is the trimmer's working representation of one surviving edge.
// The original nonce is retained throughout the pipeline (see DESIGN.md "Nonces
// are carried through the whole pipeline") so that either endpoint can always be
// recomputed fresh via siphash; renamedZ1/renamedZ2 are populated as the
// compression rounds assign them and are what finally appear in the trimmed
// edge list and the rename tables.
type edgeRecord struct {
	nonce uint64

	haveZ1    [2]bool
	renamedZ1 [2]uint32

	haveZ2    [2]bool
	renamedZ2 [2]uint32
}

// TrimmedEdge is one surviving edge after both compression rounds have run:
// both endpoints are expressed as compressed node ids sized for the
// forest-path cycle finder's C array.
type TrimmedEdge struct {
	U uint32
	V uint32
}

// CompressedID folds a bucket address and a second-level renamed id into a
// single node id, sized 2*NX*NY*2^SecondRenameBits, the domain the cycle
// finder's forest array is allocated over.
func CompressedID(p *params.Params, side uint8, x, y, renamedZ2 uint32) uint32 {
	perSide := p.NX() * p.NY() * (1 << params.SecondRenameBits)
	local := (x*p.NY()+y)*(1<<params.SecondRenameBits) + renamedZ2
	return uint32(side)*perSide + local
}
