// Package solver wires the edge function, trimmer, cycle finder, recovery
// and verification stages together into the single entry point a caller
// (CLI, or the engine's worker loop) actually needs: given a header and a
// bit layout, find zero or more proofs.
package solver

import (
	"fmt"

	"github.com/Scramblecoin/cuckoo/cycle"
	"github.com/Scramblecoin/cuckoo/params"
	"github.com/Scramblecoin/cuckoo/recovery"
	"github.com/Scramblecoin/cuckoo/siphash"
	"github.com/Scramblecoin/cuckoo/trimmer"
	"github.com/Scramblecoin/cuckoo/verify"
)

// Proof is one verified solution: the header it was found for and its 42
// ascending edge nonces.
type Proof struct {
	Header []byte
	Nonces []uint64
}

// Solve runs one full header -> proof attempt: derive keys, trim the
// graph, search the trimmed edges for 42-cycles, and recover + verify
// every candidate found. Proofs that fail verification (which should
// never happen for a correctly implemented pipeline, but is checked
// rather than assumed) are dropped rather than returned.
func Solve(p *params.Params, header []byte) ([]Proof, error) {
	keys, err := siphash.DeriveKeys(header)
	if err != nil {
		return nil, fmt.Errorf("solver: deriving keys: %w", err)
	}

	res, err := trimmer.New(p, keys).Run()
	if err != nil {
		return nil, fmt.Errorf("solver: trimming: %w", err)
	}

	domainSize := p.NX() * p.NY() * (1 << params.SecondRenameBits) * 2
	maxPathLen := cycle.MaxPathLen(p.EdgeBits)
	finder := cycle.New(domainSize, params.ProofSize, maxPathLen)

	cycleEdges := make([]cycle.Edge, len(res.Edges))
	for i, e := range res.Edges {
		cycleEdges[i] = cycle.Edge{A: e.U, B: e.V}
	}

	found, err := finder.FindCycles(cycleEdges)
	if err != nil {
		return nil, fmt.Errorf("solver: cycle search: %w", err)
	}

	var proofs []Proof
	for _, cyc := range found {
		nonces, err := recovery.Recover(p, keys, res.RenameTable1, res.RenameTable2, cyc)
		if err != nil {
			// A cycle the forest reported that recovery cannot map back to
			// nonces indicates an internal inconsistency, not a bad proof
			// from an external caller; surface it rather than silently
			// dropping the candidate.
			return nil, fmt.Errorf("solver: recovering cycle: %w", err)
		}
		if err := verify.Verify(p, keys, nonces); err != nil {
			continue
		}
		proofs = append(proofs, Proof{Header: header, Nonces: nonces})
	}

	return proofs, nil
}
