package rc

import (
	"sync/atomic"

	"github.com/cynecx/objc2"
)

// Weak is a non-owning observer of a foreign object. Creating, holding
// or releasing it never changes the object's retain count, and it stays
// loadable after the object is deallocated.
type Weak[T objc2.Object] struct {
	rt    objc2.Runtime
	slot  objc2.WeakSlot
	moved atomic.Bool
	freed atomic.Bool
}

// NewWeak records the object's identity in a runtime weak slot. The
// handle stays live and its count is unchanged.
func NewWeak[T objc2.Object](h *Shared[T]) *Weak[T] {
	return &Weak[T]{rt: h.rt, slot: h.rt.InitWeak(h.Raw())}
}

// Load atomically either retains the object and returns a shared handle
// to it, or returns nil if the object has been deallocated. The
// atomicity with respect to a concurrent deallocation is the runtime's
// guarantee; Load never partially succeeds.
func (w *Weak[T]) Load() *Shared[T] {
	w.check()
	ptr := w.rt.LoadWeakRetained(w.slot)
	if ptr == objc2.Nil {
		return nil
	}
	return &Shared[T]{handle[T]{rt: w.rt, ptr: T(ptr)}}
}

// Release frees the weak slot. The observed object's count is unchanged.
// The weak reference is unusable afterwards.
func (w *Weak[T]) Release() {
	if w.moved.Load() {
		panic("objc2/rc: use of weak reference after send")
	}
	if w.freed.Swap(true) {
		panic("objc2/rc: weak reference released twice")
	}
	w.rt.DestroyWeak(w.slot)
}

func (w *Weak[T]) check() {
	if w.moved.Load() {
		panic("objc2/rc: use of weak reference after send")
	}
	if w.freed.Load() {
		panic("objc2/rc: use of released weak reference")
	}
}
