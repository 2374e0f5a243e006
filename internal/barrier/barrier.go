// Package barrier provides a countdown that runs a continuation once, after
// a fixed number of independent operations have reported completion.
package barrier

import "sync"

// Barrier counts down from n. The Done call that brings the count to zero
// runs the continuation; no other call does. A Barrier belongs to the
// operation that created it and is not reused.
type Barrier struct {
	mu        sync.Mutex
	remaining int
	done      func()
}

// New returns a Barrier expecting n Done calls. When n is zero the
// continuation runs before New returns. n must not be negative.
func New(n int, done func()) *Barrier {
	if n < 0 {
		panic("barrier: negative count")
	}
	b := &Barrier{remaining: n, done: done}
	if n == 0 {
		b.fire()
	}
	return b
}

// Done records one completion. It panics if called more times than the
// count the Barrier was created with.
func (b *Barrier) Done() {
	b.mu.Lock()
	if b.remaining <= 0 {
		b.mu.Unlock()
		panic("barrier: Done called after completion")
	}
	b.remaining--
	last := b.remaining == 0
	b.mu.Unlock()

	if last {
		b.fire()
	}
}

// Remaining reports how many completions are still outstanding.
func (b *Barrier) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

func (b *Barrier) fire() {
	done := b.done
	b.done = nil
	if done != nil {
		done()
	}
}
