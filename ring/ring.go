// Package ring implements a lock-free, single-producer/single-consumer
// bounded ring buffer over a fixed power-of-two slot array.
//
// The producer mutates head only, the consumer mutates tail only, and one
// slot is permanently reserved so empty and full are distinguishable without
// a separate counter. Concurrency correctness rests entirely on the
// load/store ordering documented on the Ring type below — do not "simplify"
// the atomic accesses without re-reading that contract.
package ring

import "sync/atomic"

// Ring is a fixed-capacity SPSC circular buffer of elements of type T.
//
// head is owned by the producer; tail is owned by the consumer. Both are
// read from the opposite side with an acquire load and published with a
// release store, so payload bytes written before a commit are visible to
// the other side after it observes the updated cursor. sync/atomic exposes
// no ordering weaker than sequential consistency on this platform; seq-cst
// is a conservative superset of the acquire/release edges this algorithm
// requires, so Load/Store below stand in for them without a correctness gap.
type Ring[T any] struct {
	_    [64]byte // isolate head from false sharing with neighboring allocations
	head atomic.Uint64
	_    [56]byte
	tail atomic.Uint64
	_    [56]byte

	mask uint64 // capacity-1, capacity is a power of two
	buf  []T
}

// New allocates a Ring with the given capacity, which must be a power of two
// no smaller than 2. Usable capacity is n-1: one slot is reserved to tell
// empty apart from full.
func New[T any](n int) *Ring[T] {
	if n < 2 || n&(n-1) != 0 {
		panic("ring: capacity must be a power of two >= 2")
	}
	return &Ring[T]{
		mask: uint64(n - 1),
		buf:  make([]T, n),
	}
}

// Capacity returns the usable capacity (n-1).
func (r *Ring[T]) Capacity() int {
	return int(r.mask)
}

// Empty reports whether the ring currently holds no elements. Intended to be
// called from the consumer side; a producer-side call observes a
// conservative (possibly stale) result, which is acceptable per the ring's
// contract.
func (r *Ring[T]) Empty() bool {
	head := r.head.Load()
	tail := r.tail.Load()
	return head == tail
}

// Full reports whether the ring has no free slots. Intended to be called
// from the producer side; a consumer-side call observes a conservative
// result.
func (r *Ring[T]) Full() bool {
	head := r.head.Load()
	tail := r.tail.Load()
	return (head+1)&r.mask == tail&r.mask
}

// SizeApprox returns an approximate element count in [0, Capacity()]. It may
// be stale with respect to a concurrently progressing opposite role.
func (r *Ring[T]) SizeApprox() int {
	head := r.head.Load()
	tail := r.tail.Load()
	capN := r.mask + 1
	return int((head - tail + capN) % capN)
}

// Clear resets both cursors to zero. Not thread-safe: the caller must
// quiesce both the producer and the consumer before calling this.
func (r *Ring[T]) Clear() {
	r.head.Store(0)
	r.tail.Store(0)
}

// Push enqueues item, returning false if the ring is full.
func (r *Ring[T]) Push(item T) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	next := (head + 1) & r.mask
	if next == tail&r.mask {
		return false
	}
	r.buf[head&r.mask] = item
	r.head.Store(next)
	return true
}

// PushOverwrite enqueues item unconditionally. If the ring is full, it first
// advances tail by one, evicting the oldest element, then writes. Racing
// with a concurrent Pop can drop an additional element; this operation is
// not compatible with a long-held read window (see ReadAcquire) across the
// evicted slot.
func (r *Ring[T]) PushOverwrite(item T) {
	head := r.head.Load()
	tail := r.tail.Load()
	next := (head + 1) & r.mask
	if next == tail&r.mask {
		r.tail.Store((tail + 1) & r.mask)
	}
	r.buf[head&r.mask] = item
	r.head.Store(next)
}

// PushSlice enqueues up to len(src) items, clamped by free space, writing in
// at most two contiguous runs split at the end-of-buffer wrap. It returns the
// count actually enqueued.
func (r *Ring[T]) PushSlice(src []T) int {
	if len(src) == 0 {
		return 0
	}
	head := r.head.Load()
	tail := r.tail.Load()
	capN := r.mask + 1
	free := (tail - head - 1 + capN) % capN
	n := uint64(len(src))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	pos := head & r.mask
	first := capN - pos
	if first > n {
		first = n
	}
	copy(r.buf[pos:pos+first], src[:first])
	if n > first {
		copy(r.buf[0:n-first], src[first:n])
	}

	r.head.Store((head + n) & r.mask)
	return int(n)
}

// Pop dequeues one element into *dst, returning false if the ring is empty.
func (r *Ring[T]) Pop(dst *T) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	if head&r.mask == tail&r.mask {
		return false
	}
	*dst = r.buf[tail&r.mask]
	r.tail.Store((tail + 1) & r.mask)
	return true
}

// PopSlice dequeues up to len(dst) elements, clamped by available elements,
// reading in at most two contiguous runs split at the end-of-buffer wrap. It
// returns the count actually dequeued.
func (r *Ring[T]) PopSlice(dst []T) int {
	if len(dst) == 0 {
		return 0
	}
	head := r.head.Load()
	tail := r.tail.Load()
	capN := r.mask + 1
	avail := (head - tail + capN) % capN
	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	pos := tail & r.mask
	first := capN - pos
	if first > n {
		first = n
	}
	copy(dst[:first], r.buf[pos:pos+first])
	if n > first {
		copy(dst[first:n], r.buf[0:n-first])
	}

	r.tail.Store((tail + n) & r.mask)
	return int(n)
}

// WriteAcquire returns a slice into the ring's backing storage covering the
// largest contiguous free run up to the wrap boundary, bounded by free
// space. The caller fills at most len(result) elements, then calls
// WriteCommit with however many it actually filled. An empty slice means the
// ring is full. Enqueueing more than one acquired run requires a second
// WriteAcquire/WriteCommit pair after the first commit.
func (r *Ring[T]) WriteAcquire() []T {
	head := r.head.Load()
	tail := r.tail.Load()
	capN := r.mask + 1
	free := (tail - head - 1 + capN) % capN
	if free == 0 {
		return nil
	}
	pos := head & r.mask
	run := capN - pos
	if run > free {
		run = free
	}
	return r.buf[pos : pos+run]
}

// WriteCommit advances head by n, publishing n elements previously written
// into the slice returned by WriteAcquire. n must not exceed that slice's
// length.
func (r *Ring[T]) WriteCommit(n int) {
	head := r.head.Load()
	r.head.Store((head + uint64(n)) & r.mask)
}

// ReadAcquire returns a slice into the ring's backing storage covering the
// largest contiguous readable run up to the wrap boundary. The caller
// consumes at most len(result) elements, then calls ReadCommit with however
// many it actually consumed. An empty slice means the ring is empty.
func (r *Ring[T]) ReadAcquire() []T {
	head := r.head.Load()
	tail := r.tail.Load()
	capN := r.mask + 1
	avail := (head - tail + capN) % capN
	if avail == 0 {
		return nil
	}
	pos := tail & r.mask
	run := capN - pos
	if run > avail {
		run = avail
	}
	return r.buf[pos : pos+run]
}

// ReadCommit advances tail by n, releasing n elements previously consumed
// from the slice returned by ReadAcquire. n must not exceed that slice's
// length.
func (r *Ring[T]) ReadCommit(n int) {
	tail := r.tail.Load()
	r.tail.Store((tail + uint64(n)) & r.mask)
}
