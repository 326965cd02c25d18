package rc

import (
	"sync/atomic"

	"github.com/cynecx/objc2"
)

// Envelopes move handles between goroutines. The generic constraints
// encode the transfer rules on the pointee type: a sole owner only needs
// the object to be movable, while shared and weak transfers also need it
// to tolerate concurrent reads, since every clone exposes them.
//
// An envelope may cross goroutines freely (for example through a
// channel) and is opened exactly once with Receive; the original handle
// is spent the moment it is sent.

// OwnedEnvelope carries an exclusive handle between goroutines.
type OwnedEnvelope[T objc2.Movable] struct {
	h    *Owned[T]
	open atomic.Bool
}

// SendOwned consumes the handle and seals it in an envelope.
func SendOwned[T objc2.Movable](o *Owned[T]) *OwnedEnvelope[T] {
	ptr := o.take("send")
	return &OwnedEnvelope[T]{h: &Owned[T]{handle[T]{rt: o.rt, ptr: ptr}}}
}

// Receive unseals the envelope. A second call panics.
func (e *OwnedEnvelope[T]) Receive() *Owned[T] {
	if e.open.Swap(true) {
		panic("objc2/rc: envelope received twice")
	}
	return e.h
}

// SharedEnvelope carries a shared handle between goroutines.
type SharedEnvelope[T objc2.MovableShareable] struct {
	h    *Shared[T]
	open atomic.Bool
}

// SendShared consumes the handle and seals it in an envelope. Other
// clones of the handle are unaffected.
func SendShared[T objc2.MovableShareable](s *Shared[T]) *SharedEnvelope[T] {
	ptr := s.take("send")
	return &SharedEnvelope[T]{h: &Shared[T]{handle[T]{rt: s.rt, ptr: ptr}}}
}

// Receive unseals the envelope. A second call panics.
func (e *SharedEnvelope[T]) Receive() *Shared[T] {
	if e.open.Swap(true) {
		panic("objc2/rc: envelope received twice")
	}
	return e.h
}

// WeakEnvelope carries a weak reference between goroutines. Loading a
// weak reference can race with deallocation from any thread, so it
// follows the shared transfer rule.
type WeakEnvelope[T objc2.MovableShareable] struct {
	w    *Weak[T]
	open atomic.Bool
}

// SendWeak seals the weak reference in an envelope. The original is
// unusable afterwards.
func SendWeak[T objc2.MovableShareable](w *Weak[T]) *WeakEnvelope[T] {
	if w.freed.Load() {
		panic("objc2/rc: send of released weak reference")
	}
	if w.moved.Swap(true) {
		panic("objc2/rc: weak reference sent twice")
	}
	moved := &Weak[T]{rt: w.rt, slot: w.slot}
	return &WeakEnvelope[T]{w: moved}
}

// Receive unseals the envelope. A second call panics.
func (e *WeakEnvelope[T]) Receive() *Weak[T] {
	if e.open.Swap(true) {
		panic("objc2/rc: envelope received twice")
	}
	return e.w
}
