// Command cuckoosolve is a thin operational wrapper over the engine and
// solver packages: solve one header from the command line, run a small
// in-process job server driven by stdin, or print the properties
// registry.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
