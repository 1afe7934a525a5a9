package main

import (
	"log"

	"github.com/Scramblecoin/cuckoo/params"
)

// buildParams constructs the bit layout from the persistent flags shared
// by every subcommand.
func buildParams() *params.Params {
	var opts []params.Option
	if numThreads > 0 {
		opts = append(opts, params.WithNumThreads(numThreads))
	}
	if numTrims > 0 {
		opts = append(opts, params.WithNumTrims(numTrims))
	}
	p, err := params.New(edgeBits, opts...)
	if err != nil {
		log.Fatalln("building params:", err)
	}
	return p
}
