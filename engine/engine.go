// Package engine bridges external callers to the solver with a bounded
// producer/consumer worker, the asynchronous front door described for this
// design: callers push header jobs in, a single worker goroutine drains
// them through solver.Solve, and results land on an output queue for
// callers to read back whenever convenient.
//
// The channel-driven controller/worker shape follows the teacher's own
// node/controller.go: one goroutine owns all mutable state and is driven
// entirely by channel operations and a select loop, rather than by a
// mutex-guarded state machine.
package engine

import (
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/Scramblecoin/cuckoo/params"
	"github.com/Scramblecoin/cuckoo/solver"
)

// Status is the outcome of a PushInput call.
type Status int

const (
	StatusOK Status = iota
	StatusFull
	StatusTooLong
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFull:
		return "full"
	case StatusTooLong:
		return "too_long"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MaxInputDataBytes bounds the size of one job's opaque header payload.
const MaxInputDataBytes = 2048

// DefaultInputQueueCapacity is the bounded input queue's default size.
const DefaultInputQueueCapacity = 20

// idleSleep is how long the worker sleeps when the input queue is empty,
// matching the 1us poll interval called out for the job queue design.
const idleSleep = time.Microsecond

// Input is one solve request.
type Input struct {
	ID    uint32
	Data  []byte
	Nonce [8]byte
}

// Output is one solve result: at most one proof found for the job (Nonces
// is nil when none were found; a job with several proofs yields one Output
// per proof), echoing the request's id and correlation nonce.
type Output struct {
	ID     uint32
	Nonces []uint64
	Nonce  [8]byte
}

// jobTrace is one job's optional gob-encoded execution record, recorded
// when the engine is constructed with a trace writer.
type jobTrace struct {
	ID       uint32
	DataLen  int
	Duration time.Duration
	Solved   bool
}

// Engine owns the worker goroutine, both queues, and the solve-duration
// quantile sketch.
type Engine struct {
	p *params.Params

	input  chan Input
	output chan Output

	stopRequested int32
	workerDone    chan struct{}
	started       bool
	mu            sync.Mutex

	durMu     sync.Mutex
	durations *ddsketch.DDSketch
	jobCount  int64

	traceMu sync.Mutex
	trace   *gob.Encoder

	props *Properties
}

// New constructs an Engine for the given bit layout. inputCapacity <= 0
// uses DefaultInputQueueCapacity. traceWriter, if non-nil, receives one
// gob-encoded jobTrace record per completed job - an optional, purely
// diagnostic job-trace recorder.
func New(p *params.Params, inputCapacity int, traceWriter io.Writer) (*Engine, error) {
	if inputCapacity <= 0 {
		inputCapacity = DefaultInputQueueCapacity
	}
	sketch, err := ddsketch.NewDefaultDDSketch(0.01)
	if err != nil {
		return nil, fmt.Errorf("engine: creating duration sketch: %w", err)
	}
	e := &Engine{
		p:         p,
		input:     make(chan Input, inputCapacity),
		output:    make(chan Output, inputCapacity*4),
		durations: sketch,
		props:     newProperties(p),
	}
	if traceWriter != nil {
		e.trace = gob.NewEncoder(traceWriter)
	}
	return e, nil
}

// PushInput enqueues one solve request, or reports why it could not be
// enqueued.
func (e *Engine) PushInput(in Input) Status {
	if atomic.LoadInt32(&e.stopRequested) != 0 {
		log.Printf("engine: rejecting job %d (stopped), header fp=%08x", in.ID, murmur3.Sum32(in.Data))
		return StatusStopped
	}
	if len(in.Data) > MaxInputDataBytes {
		log.Printf("engine: rejecting job %d (data too long: %d bytes), header fp=%08x", in.ID, len(in.Data), murmur3.Sum32(in.Data))
		return StatusTooLong
	}
	select {
	case e.input <- in:
		return StatusOK
	default:
		log.Printf("engine: rejecting job %d (queue full), header fp=%08x", in.ID, murmur3.Sum32(in.Data))
		return StatusFull
	}
}

// IsQueueUnderLimit reports whether the input queue currently has room.
func (e *Engine) IsQueueUnderLimit() bool {
	return len(e.input) < cap(e.input)
}

// ReadOutput dequeues one result, if any is available.
func (e *Engine) ReadOutput() (Output, bool) {
	select {
	case out := <-e.output:
		return out, true
	default:
		return Output{}, false
	}
}

// Start launches the worker goroutine. Calling Start more than once is a
// no-op; the worker is single-instance for the life of the Engine.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.workerDone = make(chan struct{})
	go e.run()
	log.Println("engine: worker started")
}

// Stop requests graceful shutdown: the worker finishes any in-flight solve,
// drains both queues, and exits.
func (e *Engine) Stop() {
	atomic.StoreInt32(&e.stopRequested, 1)
}

// HasStopped reports whether the worker has observed Stop and finished its
// in-flight solve, if any.
func (e *Engine) HasStopped() bool {
	e.mu.Lock()
	done := e.workerDone
	started := e.started
	e.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}

// Reset clears the stop flag without restarting the worker goroutine - the
// caller must Start a fresh Engine to resume processing once stopped.
func (e *Engine) Reset() {
	atomic.StoreInt32(&e.stopRequested, 0)
}

// ClearQueues best-effort drains both queues.
func (e *Engine) ClearQueues() {
	for {
		select {
		case <-e.input:
		default:
			goto drainedInput
		}
	}
drainedInput:
	for {
		select {
		case <-e.output:
		default:
			return
		}
	}
}

// Properties returns the engine's tunable/metric registry.
func (e *Engine) Properties() *Properties {
	return e.props
}

// Stats is a snapshot of the engine's solve-duration distribution, in
// seconds.
type Stats struct {
	Count int64
	P50   float64
	P95   float64
	P99   float64
}

// Stats reports solve-duration quantiles recorded so far, for operational
// visibility, not for correctness.
func (e *Engine) Stats() (Stats, error) {
	e.durMu.Lock()
	defer e.durMu.Unlock()
	values, err := e.durations.GetValuesAtQuantiles([]float64{0.5, 0.95, 0.99})
	if err != nil {
		return Stats{}, fmt.Errorf("engine: reading duration quantiles: %w", err)
	}
	return Stats{
		Count: atomic.LoadInt64(&e.jobCount),
		P50:   values[0],
		P95:   values[1],
		P99:   values[2],
	}, nil
}

func (e *Engine) run() {
	defer close(e.workerDone)
	for {
		if atomic.LoadInt32(&e.stopRequested) != 0 {
			e.ClearQueues()
			return
		}

		var job Input
		var ok bool
		select {
		case job, ok = <-e.input:
		default:
			ok = false
		}
		if !ok {
			time.Sleep(idleSleep)
			continue
		}

		fp := xxhash.Sum64(job.Data)
		log.Printf("engine: starting job %d, header fp=%016x", job.ID, fp)

		start := time.Now()
		proofs, err := e.solveRecovered(job.Data)
		elapsed := time.Since(start)

		e.durMu.Lock()
		e.durations.Add(elapsed.Seconds())
		e.durMu.Unlock()
		atomic.AddInt64(&e.jobCount, 1)

		if err != nil {
			log.Printf("engine: job %d (fp=%016x) failed: %v", job.ID, fp, err)
		}
		e.recordTrace(job, elapsed, err == nil && len(proofs) > 0)

		if len(proofs) == 0 {
			e.output <- Output{ID: job.ID, Nonce: job.Nonce}
			continue
		}
		for _, pr := range proofs {
			e.output <- Output{ID: job.ID, Nonces: pr.Nonces, Nonce: job.Nonce}
		}
	}
}

// solveRecovered runs the solver pipeline with panic recovery, so a bug
// deep in trimming/cycle-finding/recovery cannot take down the worker
// goroutine: a recovered panic is logged and treated as "no proof found".
func (e *Engine) solveRecovered(header []byte) (proofs []solver.Proof, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("engine: recovered panic in solver: %v", r)
			proofs, err = nil, fmt.Errorf("engine: solver panicked: %v", r)
		}
	}()
	return solver.Solve(e.p, header)
}

func (e *Engine) recordTrace(job Input, elapsed time.Duration, solved bool) {
	if e.trace == nil {
		return
	}
	e.traceMu.Lock()
	defer e.traceMu.Unlock()
	if err := e.trace.Encode(jobTrace{ID: job.ID, DataLen: len(job.Data), Duration: elapsed, Solved: solved}); err != nil {
		log.Printf("engine: writing job trace for job %d: %v", job.ID, err)
	}
}
