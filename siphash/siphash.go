// Package siphash derives the four SipHash-2-4 state keys from a Cuckoo
// Cycle header and evaluates the keyed edge function used to build the
// bipartite graph. This is treated as a fixed-contract external primitive
// per the solver's design: the hard work downstream (trimmer, cycle finder)
// never reasons about its internals, only about the Edge(i, side) result.
//
// The upstream corpus's github.com/dchest/siphash exposes a 2-key,
// arbitrary-length-message SipHash-2-4 (Hash(k0, k1 uint64, p []byte)
// uint64), which cannot express Cuckoo Cycle's actual construction: four
// 64-bit keys seed the SipHash state words directly (v0=k0, v1=k1, v2=k2,
// v3=k3, each XORed with the usual SipHash initialization constants) and
// the "message" is always a single 64-bit nonce. We therefore hand-roll the
// permutation here, matching the reference algorithm bit-for-bit.
package siphash

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Keys holds the four 64-bit SipHash state seeds derived from a header.
type Keys struct {
	K0, K1, K2, K3 uint64
}

// DeriveKeys hashes header with an unkeyed BLAKE2b-256 (matching the teacher's
// own use of blake2b for transaction hashing in ldpc/code.go) and splits the
// 32-byte digest into four little-endian uint64 keys.
func DeriveKeys(header []byte) (Keys, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Keys{}, err
	}
	h.Write(header)
	sum := h.Sum(nil)
	return Keys{
		K0: binary.LittleEndian.Uint64(sum[0:8]),
		K1: binary.LittleEndian.Uint64(sum[8:16]),
		K2: binary.LittleEndian.Uint64(sum[16:24]),
		K3: binary.LittleEndian.Uint64(sum[24:32]),
	}, nil
}

// Side identifies which partition of the bipartite graph an edge endpoint
// belongs to: 0 for U, 1 for V.
type Side uint8

const (
	SideU Side = 0
	SideV Side = 1
)

// rotl64 rotates x left by b bits, the ARX primitive SipHash's mix round is
// built from.
func rotl64(x uint64, b uint) uint64 {
	return (x << b) | (x >> (64 - b))
}

// sipRound performs one SipHash mix round over the four state words.
func sipRound(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v1 = rotl64(v1, 13)
	v1 ^= v0
	v0 = rotl64(v0, 32)
	v2 += v3
	v3 = rotl64(v3, 16)
	v3 ^= v2
	v0 += v3
	v3 = rotl64(v3, 21)
	v3 ^= v0
	v2 += v1
	v1 = rotl64(v1, 17)
	v1 ^= v2
	v2 = rotl64(v2, 32)
	return v0, v1, v2, v3
}

// hash24 computes SipHash-2-4 of a single 64-bit nonce under the four keys,
// following the reference Cuckoo Cycle construction: the nonce is both the
// only message word and (XORed in) the finalization constant carrier.
func hash24(k Keys, nonce uint64) uint64 {
	v0 := k.K0 ^ 0x736f6d6570736575
	v1 := k.K1 ^ 0x646f72616e646f6d
	v2 := k.K2 ^ 0x6c7967656e657261
	v3 := k.K3 ^ 0x7465646279746573

	v3 ^= nonce
	// 2 compression rounds
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0 ^= nonce

	v2 ^= 0xff
	// 4 finalization rounds
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)

	return v0 ^ v1 ^ v2 ^ v3
}

// Edge computes the masked node id for edge nonce i's given side, i.e.
// edge(i,side) = SipHash(keys, 2*i+side) & edgeMask, with the partition bit
// (side) folded into the low bit of the returned combined node id as
// described in the data model: node = (maskedHash << 1) | side.
func Edge(k Keys, i uint64, side Side, edgeMask uint64) uint64 {
	h := hash24(k, 2*i+uint64(side))
	return ((h & edgeMask) << 1) | uint64(side)
}

// EdgeHash returns the raw masked hash value (without the side bit folded
// in), used where callers need the bare E-bit node coordinate, e.g. when
// bucketing by its X/Y/Z fields.
func EdgeHash(k Keys, i uint64, side Side, edgeMask uint64) uint64 {
	return hash24(k, 2*i+uint64(side)) & edgeMask
}
