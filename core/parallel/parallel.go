// Package parallel splits index ranges across goroutines for the row-wise
// loops of the E-step and the density grids.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the item count below which callers should stay
// sequential. Per-row work in this module is a handful of 2×2 density
// evaluations, so small inputs are faster without goroutines.
const DefaultThreshold = 512

// Parallelize divides items into one contiguous chunk per CPU core and runs
// fn(start, end) for each chunk concurrently. It returns after every chunk
// has finished.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(items, runtime.NumCPU(), fn)
}

// ParallelizeWorkers is Parallelize with an explicit worker count.
// A non-positive workers value runs fn(0, items) on the calling goroutine.
func ParallelizeWorkers(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if workers <= 1 {
		fn(0, items)
		return
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// Ceiling division so the last chunk absorbs the remainder
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
