// Package parallel is the bounded parallel subprocess driver (§4.7): it
// runs external analysis tools with a capped worker pool, captures their
// output, and reports exit status.
//
// Concurrency bounding follows the teacher's
// indexer/layerscanner.layerScanner.Scan shape: a [golang.org/x/sync/semaphore.Weighted]
// caps in-flight work and [golang.org/x/sync/errgroup.Group] supervises
// collection, generalized here from goroutines scanning layers to
// goroutines running subprocesses and capturing their stdout.
package parallel

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// maxCapacity is the hard cap protecting against absurd capacity values.
const maxCapacity = 1024

// maxOutput bounds per-slot captured output (64 MiB), per §4.7; exceeding
// it is a terminal condition for that slot, not a silent truncation.
const maxOutput = 64 << 20

// ErrOutputTooLarge is returned by a [Slot] whose child wrote more than
// [maxOutput] bytes to its captured stream.
var ErrOutputTooLarge = fmt.Errorf("parallel: child output exceeded %d bytes", maxOutput)

// Capacity resolves a requested pool size "n" to a worker count, per §4.7:
// 0 resolves to the number of online CPUs (respecting the calling
// process's CPU affinity via [runtime.GOMAXPROCS]); a negative n resolves
// to |n| * online-CPUs; a positive n is taken verbatim. The result is
// capped at maxCapacity.
func Capacity(n int) int {
	cpus := runtime.GOMAXPROCS(0)
	var c int
	switch {
	case n == 0:
		c = cpus
	case n < 0:
		c = -n * cpus
	default:
		c = n
	}
	if c < 1 {
		c = 1
	}
	if c > maxCapacity {
		c = maxCapacity
	}
	return c
}

// Command is one unit of work: an external tool invocation and a label
// used to identify its [Slot] in results.
type Command struct {
	Label string
	Path  string
	Args  []string
}

// Slot is one finished child: its exit status and its captured output
// (stdout and stderr written to one buffer). ExitCode is -1 if the process
// could not be started at all (Err explains why).
type Slot struct {
	Label    string
	ExitCode int
	Output   []byte
	Err      error
}

// Pool runs a bounded set of Commands concurrently, capped at "capacity"
// (see [Capacity] for resolving the caller's requested size), and returns
// one [Slot] per command. The first command whose error is context
// cancellation (not a nonzero exit, which is recorded in ExitCode, not
// Err) halts remaining unstarted commands and is returned from Pool;
// already-collected slots are still returned alongside it.
//
// This collapses §4.7's insert/collect_one/shutdown Parallel-collector
// contract into a single call, since Go's errgroup+semaphore already
// supervises spawn, wait, and cancellation without a hand-rolled poll
// loop; a caller wanting per-call timeouts passes a context with a
// deadline, which shutdown(SIGTERM) maps onto via ctx cancellation
// killing in-flight exec.Cmds.
func Pool(ctx context.Context, capacity int, cmds []Command) ([]Slot, error) {
	workers := Capacity(capacity)
	if workers > len(cmds) && len(cmds) > 0 {
		workers = len(cmds)
	}
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	slots := make([]Slot, len(cmds))
	for i, c := range cmds {
		i, c := i, c
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				slots[i] = Slot{Label: c.Label, ExitCode: -1, Err: err}
				return err
			}
			defer sem.Release(1)
			slots[i] = run(gctx, c)
			return nil
		})
	}
	err := g.Wait()
	return slots, err
}

// boundedWriter caps total writes at maxOutput, returning
// [ErrOutputTooLarge] once exceeded.
type boundedWriter struct {
	buf bytes.Buffer
}

func (w *boundedWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > maxOutput {
		return 0, ErrOutputTooLarge
	}
	return w.buf.Write(p)
}

func run(ctx context.Context, c Command) Slot {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	var out boundedWriter
	cmd.Stdout = &out
	cmd.Stderr = &out

	slot := Slot{Label: c.Label}
	err := cmd.Run()
	slot.Output = out.buf.Bytes()
	switch e := err.(type) {
	case nil:
		slot.ExitCode = 0
	case *exec.ExitError:
		slot.ExitCode = e.ExitCode()
	default:
		slot.ExitCode = -1
		slot.Err = err
	}
	if out.buf.Len() >= maxOutput {
		slot.Err = ErrOutputTooLarge
	}
	return slot
}
