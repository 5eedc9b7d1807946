// Package parallel splits row-oriented work across goroutines.
package parallel

import "sync"

// Workers is the number of row bands work is split into.
const Workers = 8

// Rows runs fn across row bands using multiple goroutines. Each call
// receives a disjoint half-open range [startY, endY), so workers that only
// write their own rows need no further synchronization.
func Rows(h int, fn func(startY, endY int)) {
	if h <= 0 {
		return
	}
	rowsPerWorker := (h + Workers - 1) / Workers
	var wg sync.WaitGroup
	for worker := 0; worker < Workers; worker++ {
		startY := worker * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > h {
			endY = h
		}
		if startY >= h {
			break
		}
		wg.Add(1)
		go func(sy, ey int) {
			defer wg.Done()
			fn(sy, ey)
		}(startY, endY)
	}
	wg.Wait()
}
