package main

import (
	"github.com/spf13/cobra"
)

var (
	edgeBits   uint32
	numThreads int
	numTrims   int
	header    string
	traceFile string
	jsonOut   bool

	rootCmd = &cobra.Command{
		Use:   "cuckoosolve",
		Short: "Find and verify Cuckoo Cycle proofs of work",
	}

	solveCmd = &cobra.Command{
		Use:   "solve",
		Short: "Solve a single header and print any proofs found",
		Run:   runSolve, // defined in cmd_solve.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run a worker that reads newline-delimited headers from stdin and prints results",
		Run:   runServe, // defined in cmd_serve.go
	}

	propertiesCmd = &cobra.Command{
		Use:   "properties",
		Short: "Print the engine's tunable properties registry as JSON",
		Run:   runProperties, // defined in cmd_properties.go
	}
)

func init() {
	rootCmd.PersistentFlags().Uint32Var(&edgeBits, "edge-bits", 16, "log2 of the node count on each side of the graph")
	rootCmd.PersistentFlags().IntVar(&numThreads, "threads", 0, "block-parallel worker count per trim round (0 = auto)")
	rootCmd.PersistentFlags().IntVar(&numTrims, "trims", 0, "number of trim rounds (0 = default for edge-bits)")

	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringVar(&header, "header", "", "header bytes to solve, as a UTF-8 string")
	solveCmd.Flags().BoolVar(&jsonOut, "json", false, "print proofs as JSON instead of plain nonce lists")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&traceFile, "trace", "", "optional path to append gob-encoded job traces to")

	rootCmd.AddCommand(propertiesCmd)
}
