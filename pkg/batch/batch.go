// Package batch chunks a sequence into fixed-size groups for pipelined
// processing.
package batch

import "iter"

// Seq splits src into lazy groups of up to size elements; the last group may
// be shorter. All groups share one underlying cursor: a group must be fully
// consumed (or abandoned) before the next one is requested, and elements not
// consumed from an abandoned group surface in the following one. The result
// is single-use and not safe for concurrent consumers; it works over finite
// and unbounded sources alike.
func Seq[T any](src iter.Seq[T], size int) iter.Seq[iter.Seq[T]] {
	if size < 1 {
		panic("batch: size must be positive")
	}

	return func(yield func(iter.Seq[T]) bool) {
		next, stop := iter.Pull(src)
		defer stop()

		for {
			first, ok := next()
			if !ok {
				return
			}

			remaining := size - 1
			group := func(yieldInner func(T) bool) {
				if !yieldInner(first) {
					return
				}
				for remaining > 0 {
					v, ok := next()
					if !ok {
						return
					}
					remaining--
					if !yieldInner(v) {
						return
					}
				}
			}

			if !yield(group) {
				return
			}
		}
	}
}

// FromChan lifts a pipeline channel into a sequence. The sequence ends when
// the channel is closed.
func FromChan[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range ch {
			if !yield(v) {
				return
			}
		}
	}
}
