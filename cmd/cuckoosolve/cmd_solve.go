package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Scramblecoin/cuckoo/solver"
)

func runSolve(cmd *cobra.Command, args []string) {
	if header == "" && len(args) > 0 {
		header = args[0]
	}
	p := buildParams()
	log.Printf("solving: edge_bits=%d num_trims=%d num_threads=%d header=%q", p.EdgeBits, p.NumTrims, p.NumThreads, header)

	proofs, err := solver.Solve(p, []byte(header))
	if err != nil {
		log.Fatalln("solve failed:", err)
	}
	if len(proofs) == 0 {
		fmt.Println("no proof found")
		return
	}
	for _, pr := range proofs {
		if jsonOut {
			enc, err := json.Marshal(pr.Nonces)
			if err != nil {
				log.Fatalln("marshaling proof:", err)
			}
			fmt.Println(string(enc))
			continue
		}
		fmt.Println(pr.Nonces)
	}
}
