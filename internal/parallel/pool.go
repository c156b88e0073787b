// Package parallel runs full-image scans over horizontal bands on a small
// worker pool. Every call joins its workers before returning.
package parallel

import (
	"image"
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func()
)

// Pool hands work to a fixed set of goroutines. A pool with a single worker
// runs everything inline on the caller's goroutine.
type Pool struct {
	wg   sync.WaitGroup
	Do   WorkerFunc
	Wait WaitFunc
}

// Start launches numWorkers goroutines. numWorkers < 1 means GOMAXPROCS.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Do: func(f func()) {
			f()
		},
		Wait: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Add(1)
			go func() {
				defer pool.wg.Done()
				for f := range workChan {
					f()
				}
			}()
		}

		pool.Do = func(f func()) {
			workChan <- f
		}
		pool.Wait = sync.OnceFunc(func() {
			close(workChan)
			pool.wg.Wait()
		})
	}

	return pool
}

// MinBandPixels is the smallest area worth handing to another goroutine.
const MinBandPixels = 64 * 1024

// Rows calls fn once per horizontal band of r, in parallel when r is large
// enough. Bands are disjoint and together cover r exactly.
func Rows(r image.Rectangle, fn func(band image.Rectangle)) {
	if r.Empty() {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if area := r.Dx() * r.Dy(); area/MinBandPixels < workers {
		workers = area / MinBandPixels
	}
	if workers > r.Dy() {
		workers = r.Dy()
	}
	if workers <= 1 {
		fn(r)
		return
	}

	pool := Start(workers)
	step := (r.Dy() + workers - 1) / workers
	for y := r.Min.Y; y < r.Max.Y; y += step {
		band := image.Rect(r.Min.X, y, r.Max.X, min(y+step, r.Max.Y))
		pool.Do(func() { fn(band) })
	}
	pool.Wait()
}
