package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Scramblecoin/cuckoo/engine"
)

// runServe reads newline-delimited headers from stdin, feeds each one
// through the engine's worker, and prints every proof found as it
// arrives - a minimal stand-in for a real network front end, exercising
// the same PushInput/ReadOutput/Stop surface a long-running service
// would use.
func runServe(cmd *cobra.Command, args []string) {
	p := buildParams()

	var traceWriter io.Writer
	if traceFile != "" {
		f, err := os.OpenFile(traceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalln("opening trace file:", err)
		}
		defer f.Close()
		traceWriter = f
	}

	e, err := engine.New(p, engine.DefaultInputQueueCapacity, traceWriter)
	if err != nil {
		log.Fatalln("constructing engine:", err)
	}
	e.Start()

	done := make(chan struct{})
	go drainOutputs(e, done)

	scanner := bufio.NewScanner(os.Stdin)
	var nextID uint32
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		nextID++
		for {
			status := e.PushInput(engine.Input{ID: nextID, Data: []byte(line)})
			if status == engine.StatusOK {
				break
			}
			log.Printf("push rejected for job %d: %v, retrying", nextID, status)
			time.Sleep(10 * time.Millisecond)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Println("reading stdin:", err)
	}

	e.Stop()
	for !e.HasStopped() {
		time.Sleep(time.Millisecond)
	}
	close(done)
	for {
		out, ok := e.ReadOutput()
		if !ok {
			return
		}
		if len(out.Nonces) == 0 {
			fmt.Printf("job %d: no proof\n", out.ID)
			continue
		}
		fmt.Printf("job %d: %v\n", out.ID, out.Nonces)
	}
}

func drainOutputs(e *engine.Engine, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		out, ok := e.ReadOutput()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		if len(out.Nonces) == 0 {
			fmt.Printf("job %d: no proof\n", out.ID)
			continue
		}
		fmt.Printf("job %d: %v\n", out.ID, out.Nonces)
	}
}
