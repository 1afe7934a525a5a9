// Package params derives the bit layout and bucket sizing for a Cuckoo Cycle
// solve from a single edge-bit count, mirroring the build-time constants
// (EDGEBITS, XBITS, COMPRESSROUND, EXPANDROUND, ...) of the original miner.
package params

import (
	"fmt"
	"math"
	"runtime"

	"github.com/aclements/go-moremath/stats"
	"github.com/klauspost/cpuid/v2"
)

// ProofSize is the fixed cycle length a solve searches for.
const ProofSize = 42

// Params holds the derived bit layout for one edge-bit count.
type Params struct {
	EdgeBits uint32 // E
	XBits    uint32 // bucketing axis 1
	YBits    uint32 // bucketing axis 2, always equal to XBits
	ZBits    uint32 // fine residue bits, E - XBits - YBits

	CompressRound int // round at which the Z residue is renamed to a 15-bit id
	ExpandRound   int // round at which slot width grows from 5 to 6 bytes
	SecondCompressRound int // round at which the 15-bit id is renamed to 9-bit

	NumTrims   int // total trim rounds, always even
	NumThreads int // block-parallel worker count for each round

	// BucketCapacity is the number of slot-width records one X row of
	// buckets (the NY buckets sharing an X value) can hold in the first
	// round. It is derived in New from a statistical margin over the
	// expected occupancy.
	BucketCapacity uint32
}

// Node bit-field masks and sizes derived from a Params value.
func (p *Params) NX() uint32      { return 1 << p.XBits }
func (p *Params) NY() uint32      { return 1 << p.YBits }
func (p *Params) NZ() uint32      { return 1 << p.ZBits }
func (p *Params) NYZ() uint32     { return p.NY() * p.NZ() }
func (p *Params) EdgeMask() uint64 { return (1 << p.EdgeBits) - 1 }
func (p *Params) YZBits() uint32  { return p.YBits + p.ZBits }
func (p *Params) YZMask() uint32  { return (1 << p.YZBits()) - 1 }
func (p *Params) ZMask() uint32   { return (1 << p.ZBits) - 1 }
func (p *Params) NumEdges() uint64 { return 1 << p.EdgeBits }

// renamed-id widths used by the two compression rounds
const (
	FirstRenameBits  = 15 // Z residue (ZBits wide) -> 15-bit id
	SecondRenameBits = 9  // 15-bit id -> 9-bit id
)

// Option configures a Params during construction.
type Option func(*Params)

// WithNumThreads overrides the default block/thread count.
func WithNumThreads(n int) Option {
	return func(p *Params) {
		if n > 0 {
			p.NumThreads = n
		}
	}
}

// WithNumTrims overrides the default number of trim rounds. It is rounded
// down to an even number, as required by the trimmer's alternating-side
// round structure, and the compression/expand round schedule is derived
// from the result. A count too small to fit both compression rounds is
// raised to the smallest one that does.
func WithNumTrims(n int) Option {
	return func(p *Params) {
		if n > 0 {
			p.NumTrims = n &^ 1
		}
	}
}

// WithXBits overrides the default bucketing axis width.
func WithXBits(x uint32) Option {
	return func(p *Params) {
		if x > 0 {
			p.XBits = x
		}
	}
}

// New derives a full Params from an edge-bit count, picking the same
// defaults the original miner hardwires for its production parameter (E=29,
// X=Y=7) and scaling them down for smaller toy values of E used in tests.
func New(edgeBits uint32, opts ...Option) (*Params, error) {
	if edgeBits < 8 || edgeBits > 63 {
		return nil, fmt.Errorf("params: edgeBits %d out of supported range [8,63]", edgeBits)
	}

	p := &Params{
		EdgeBits:   edgeBits,
		XBits:      defaultXBits(edgeBits),
		NumTrims:   defaultNumTrims(edgeBits),
		NumThreads: defaultNumThreads(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.YBits = p.XBits
	if p.XBits*2 >= edgeBits {
		return nil, fmt.Errorf("params: XBits*2 (%d) must be < EdgeBits (%d)", p.XBits*2, edgeBits)
	}
	p.ZBits = edgeBits - p.XBits - p.YBits

	p.CompressRound = p.NumTrims - 6
	p.SecondCompressRound = p.NumTrims - 2
	p.ExpandRound = p.NumTrims / 3
	if p.ExpandRound < 1 {
		p.ExpandRound = 1
	}
	if p.CompressRound < p.ExpandRound+1 {
		p.CompressRound = p.ExpandRound + 1
	}
	if p.SecondCompressRound <= p.CompressRound {
		p.SecondCompressRound = p.CompressRound + 2
	}

	if p.NumTrims < p.SecondCompressRound+2 {
		p.NumTrims = p.SecondCompressRound + 2
	}
	if p.NumTrims&1 != 0 {
		p.NumTrims++
	}

	p.BucketCapacity = bucketCapacity(p)
	return p, nil
}

// defaultXBits picks a bucketing width that keeps (X,Y) bucket counts in the
// low hundreds for production-sized graphs while staying sane for the toy
// sizes exercised in tests.
func defaultXBits(edgeBits uint32) uint32 {
	switch {
	case edgeBits >= 24:
		return 7
	case edgeBits >= 16:
		return 4
	case edgeBits >= 12:
		return 3
	default:
		return 2
	}
}

// defaultNumTrims mirrors the original NUM_TRIMS_PARAM default, which scales
// with EdgeBits so that enough rounds run to prune the graph down to a few
// thousand surviving edges.
func defaultNumTrims(edgeBits uint32) int {
	n := int(edgeBits) + 12
	if n < 16 {
		n = 16
	}
	return n &^ 1
}

// defaultNumThreads derives a worker/block count from the detected CPU
// topology, falling back to runtime.NumCPU when cpuid cannot identify the
// core count (e.g. under virtualization restrictions).
func defaultNumThreads() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// bucketCapacity computes a statistically-margined per-X-row slot count
// for the first round of the pipeline, where occupancy is closest to
// uniform: 2^EdgeBits edges are distributed uniformly across NX rows by
// the U-side X field. We model row occupancy as Normal(mean, sqrt(mean))
// (a safe approximation to the underlying Binomial/Poisson distribution for
// the occupancy counts involved here) and take a quantile far enough into
// the tail that overflow probability is astronomically small, then add a
// 25% plus 64-record safety margin on top.
func bucketCapacity(p *Params) uint32 {
	mean := float64(p.NumEdges()) / float64(p.NX())
	stddev := math.Sqrt(mean)
	dist := stats.NormalDist{Mu: mean, Sigma: stddev}
	// The 1 - 1e-18 quantile keeps the per-run overflow probability far
	// below the birthday bound of any realistic number of solve attempts.
	// 1 - 1e-18 itself rounds to 1 in float64, so the upper quantile is
	// taken by symmetry from the 1e-18 lower one.
	q := 2*mean - dist.InvCDF(1e-18)
	if q < mean {
		q = mean
	}
	cap := uint32(q*1.25) + 64
	return cap
}
