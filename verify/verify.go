// Package verify checks a candidate 42-edge proof against the keyed edge
// function and computes its BLAKE2b-256 cyclehash. Verification is cheap
// and self-contained by design: unlike trimming and cycle-finding, it never
// needs the bucket matrix, rename tables, or forest array, only the 42
// claimed nonces and the four SipHash keys.
//
// The endpoint-matching/cycle-walk check below is adapted from the pack's
// own Cuckaroo verifier (Qitmeer's VerifyCuckaroo): XOR every U endpoint
// and every V endpoint across the 42 edges (each genuine node of even
// degree cancels out under XOR iff it appears an even number of times,
// and a real cycle's edges pair every node exactly twice), then walk the
// edges pairwise to confirm they close into one single cycle rather than
// several disjoint ones or a branching structure.
package verify

import (
	"encoding/binary"
	"fmt"

	"github.com/Scramblecoin/cuckoo/params"
	"github.com/Scramblecoin/cuckoo/siphash"
	"golang.org/x/crypto/blake2b"
)

// FailureReason classifies why a proof was rejected, so callers can branch
// on the reason (errors.As into *Error) rather than parsing error text.
type FailureReason string

const (
	WrongLength      FailureReason = "wrong_length"
	NotAscending     FailureReason = "not_ascending"
	OutOfRange       FailureReason = "out_of_range"
	EndpointMismatch FailureReason = "endpoint_mismatch"
	Branching        FailureReason = "branching"
	DeadEnd          FailureReason = "dead_end"
	WrongCycleLength FailureReason = "wrong_cycle_length"
)

// Error is the typed rejection a failed Verify call reports.
type Error struct {
	Reason FailureReason
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("verify: %s: %s", e.Reason, e.Detail)
}

// Verify checks that nonces is a valid, strictly ascending list of
// params.ProofSize edge nonces under keys whose edges close into a single
// cycle of exactly params.ProofSize edges.
func Verify(p *params.Params, keys siphash.Keys, nonces []uint64) error {
	if len(nonces) != params.ProofSize {
		return &Error{WrongLength, fmt.Sprintf("proof has %d nonces, want %d", len(nonces), params.ProofSize)}
	}

	mask := p.EdgeMask()
	uv := make([]uint64, 2*params.ProofSize)
	var xorU, xorV uint64

	for n, nonce := range nonces {
		if n > 0 && nonce <= nonces[n-1] {
			return &Error{NotAscending, fmt.Sprintf("not strictly ascending at index %d", n)}
		}
		if nonce >= p.NumEdges() {
			return &Error{OutOfRange, fmt.Sprintf("nonce %d out of range [0,%d)", nonce, p.NumEdges())}
		}
		u := siphash.Edge(keys, nonce, siphash.SideU, mask)
		v := siphash.Edge(keys, nonce, siphash.SideV, mask)
		uv[2*n] = u
		uv[2*n+1] = v
		xorU ^= u
		xorV ^= v
	}
	if xorU != 0 {
		return &Error{EndpointMismatch, "U endpoints do not cancel out"}
	}
	if xorV != 0 {
		return &Error{EndpointMismatch, "V endpoints do not cancel out"}
	}

	n := 0
	i := 0
	for {
		another := i
		for k := (i + 2) % len(uv); k != i; k = (k + 2) % len(uv) {
			if uv[k] == uv[i] {
				if another != i {
					return &Error{Branching, fmt.Sprintf("branch detected at node index %d", i)}
				}
				another = k
			}
		}
		if another == i {
			return &Error{DeadEnd, fmt.Sprintf("dead end at node index %d", i)}
		}
		i = another ^ 1
		n++
		if i == 0 {
			break
		}
	}
	if n != params.ProofSize {
		return &Error{WrongCycleLength, fmt.Sprintf("closed cycle has length %d, want %d", n, params.ProofSize)}
	}
	return nil
}

// Cyclehash computes the BLAKE2b-256 digest of a proof's canonical
// encoding - its params.ProofSize nonces as little-endian 32-bit words, in
// ascending order - used as the proof-of-work difficulty target.
func Cyclehash(nonces []uint64) [32]byte {
	buf := make([]byte, 4*len(nonces))
	for i, nonce := range nonces {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(nonce))
	}
	return blake2b.Sum256(buf)
}
