// Package parallel fans CPU kernel loops out over a bounded set of goroutines.
package parallel

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/torchbridge/internal/envconfig"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig derives the worker count from TORCHBRIDGE_NUM_THREADS.
func DefaultConfig() Config {
	n := max(envconfig.NumThreads, 1)
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1024,
	}
}

// Panic carries a panic raised inside a worker back to the calling goroutine.
type Panic struct {
	Value any
}

func (p *Panic) Error() string {
	return fmt.Sprintf("%v", p.Value)
}

// For executes f(i) for i in [0, n).
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForRange(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForRange splits [0, n) into contiguous chunks and runs f(start, end) on each.
//
// A panic in any chunk is re-raised on the caller's goroutine once all chunks
// have finished, so callers observe the same failure as a sequential loop.
func ForRange(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize*2 {
		f(0, n)
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &Panic{Value: r}
				}
			}()
			f(start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		panic(err.(*Panic).Value) //nolint:errorlint // only *Panic is ever returned
	}
}
