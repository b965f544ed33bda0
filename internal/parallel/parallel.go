// Package parallel provides chunked parallel loops for engine kernels.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096, // Index loops are cheap per item.
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false}
}

func (cfg Config) chunkSize(n int) int {
	workers := max(cfg.NumWorkers, 1)
	return max((n+workers-1)/workers, cfg.MinChunkSize, 1)
}

func (cfg Config) sequential(n int) bool {
	return !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForChunks executes f over disjoint [start, end) ranges covering [0, n).
func ForChunks(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if cfg.sequential(n) {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunk := cfg.chunkSize(n)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForErr is ForChunks for fallible work. Chunks run on an errgroup limited to
// NumWorkers; the first error stops scheduling of further chunks and is
// returned. When several chunks fail, which error is returned is unspecified.
func ForErr(n int, f func(start, end int) error, cfg Config) error {
	if n <= 0 {
		return nil
	}
	if cfg.sequential(n) {
		return f(0, n)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.NumWorkers)
	chunk := cfg.chunkSize(n)
	for start := 0; start < n; start += chunk {
		s, e := start, min(start+chunk, n)
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil // An earlier chunk already failed.
			}
			return f(s, e)
		})
	}
	return g.Wait()
}
