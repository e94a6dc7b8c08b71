// Package combinelatest implements the combine-latest fan-in combinator
// (spec.md §4.4, C6): given N input streams, it produces a stream of
// length-N slices where each output carries the most-recent value from
// every input at the moment of emission.
package combinelatest

import (
	"context"
	"sync"
)

// Combine merges sources into a stream of length-len(sources) slices.
//
//   - No output is produced until every source has yielded at least one
//     value; after that, each subsequent emission on any source produces
//     exactly one output slice.
//   - Outputs are serialized one at a time, in the order updates actually
//     arrive (a single coordinator goroutine owns the output channel).
//   - The output channel closes as soon as any source channel closes,
//     after first flushing any update from that round that had already
//     been observed but not yet emitted.
//   - Cancelling ctx tears down every drain goroutine and closes the
//     output channel; no error is produced on either path (spec.md §5).
func Combine[T any](ctx context.Context, sources []<-chan T) <-chan []T {
	n := len(sources)
	out := make(chan []T)
	if n == 0 {
		close(out)
		return out
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)

	var (
		mu          sync.Mutex
		slots       = make([]T, n)
		filled      = make([]bool, n)
		filledCount int
	)

	// signal carries "slot i updated"; buffered to n since each source has
	// at most one outstanding update in flight at a time.
	signal := make(chan int, n)

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src <-chan T) {
			defer wg.Done()
			for {
				select {
				case v, ok := <-src:
					if !ok {
						cancel()
						return
					}
					mu.Lock()
					slots[i] = v
					if !filled[i] {
						filled[i] = true
						filledCount++
					}
					mu.Unlock()
					select {
					case signal <- i:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(i, src)
	}

	go func() {
		wg.Wait()
		cancel()
	}()

	go func() {
		defer cancel()
		defer close(out)

		emit := func() bool {
			mu.Lock()
			ready := filledCount == n
			var snapshot []T
			if ready {
				snapshot = make([]T, n)
				copy(snapshot, slots)
			}
			mu.Unlock()
			if !ready {
				return true
			}
			// Only the caller's own cancellation aborts a send: the internal
			// ctx is already done while flushing after a source completes.
			select {
			case out <- snapshot:
				return true
			case <-parent.Done():
				return false
			}
		}

		for {
			select {
			case <-signal:
				if !emit() {
					return
				}
			case <-ctx.Done():
				// Flush any already-buffered updates before closing, so a
				// value observed just before completion is not dropped.
				for {
					select {
					case <-signal:
						if !emit() {
							return
						}
					default:
						return
					}
				}
			}
		}
	}()

	return out
}
