package rc

import (
	"fmt"
	"sync/atomic"

	"github.com/cynecx/objc2"
)

// handle is the shared core of Owned and Shared: a non-nil pointer, the
// runtime that manages it, and a one-shot flag guarding the release
// obligation.
type handle[T objc2.Object] struct {
	rt    objc2.Runtime
	ptr   T
	spent atomic.Bool
}

// Get returns the object. It panics if the handle's credit has already
// been consumed.
func (h *handle[T]) Get() T {
	if h.spent.Load() {
		panic("objc2/rc: use of spent handle")
	}
	return h.ptr
}

// Raw returns the object's address. Same spend rules as Get.
func (h *handle[T]) Raw() objc2.Pointer {
	return objc2.Pointer(h.Get())
}

// take consumes the handle's release obligation, returning the pointer.
// Exactly one take succeeds per handle.
func (h *handle[T]) take(op string) T {
	if h.spent.Swap(true) {
		panic(fmt.Sprintf("objc2/rc: %s of spent handle", op))
	}
	return h.ptr
}

// Owned is an exclusive handle: the only reference to its retain credit,
// with no shared handle and no outstanding borrow elsewhere. That
// exclusivity is what licenses mutating the object through it.
type Owned[T objc2.Object] struct {
	handle[T]
}

// Shared is a cloneable handle. Other handles to the same object may
// exist, so access through it must be treated as immutable.
type Shared[T objc2.Object] struct {
	handle[T]
}

// Adopt wraps a pointer that already carries a +1 retain credit, such as
// the result of alloc/init, new or copy. No foreign call is made.
// Returns nil if ptr is nil.
//
// The caller must ensure the credit claim is accurate and that no other
// reference to the object exists; neither is checked.
func Adopt[T objc2.Object](rt objc2.Runtime, ptr T) *Owned[T] {
	if ptr == 0 {
		return nil
	}
	return &Owned[T]{handle[T]{rt: rt, ptr: ptr}}
}

// AdoptShared is Adopt for objects without a uniqueness guarantee, e.g.
// immutable classes whose constructors may return interned instances.
func AdoptShared[T objc2.Object](rt objc2.Runtime, ptr T) *Shared[T] {
	if ptr == 0 {
		return nil
	}
	return &Shared[T]{handle[T]{rt: rt, ptr: ptr}}
}

// Retain turns an observed, borrowed pointer into an exclusive handle by
// crediting one retain. Returns nil if ptr is nil, making no foreign
// call in that case.
//
// The caller must ensure no other handle or mutable reference to the
// object exists.
func Retain[T objc2.Object](rt objc2.Runtime, ptr T) *Owned[T] {
	if ptr == 0 {
		return nil
	}
	res := rt.Retain(objc2.Pointer(ptr))
	return &Owned[T]{handle[T]{rt: rt, ptr: T(res)}}
}

// RetainShared turns an observed pointer into a shared handle by
// crediting one retain. Returns nil if ptr is nil.
func RetainShared[T objc2.Object](rt objc2.Runtime, ptr T) *Shared[T] {
	if ptr == 0 {
		return nil
	}
	res := rt.Retain(objc2.Pointer(ptr))
	return &Shared[T]{handle[T]{rt: rt, ptr: T(res)}}
}

// RetainAutoreleased is Retain for pointers returned autoreleased by the
// immediately preceding foreign call. When the runtime implements
// objc2.ReturnOptimizer it can skip the autorelease-pool round trip;
// semantics are identical to Retain either way.
func RetainAutoreleased[T objc2.Object](rt objc2.Runtime, ptr T) *Owned[T] {
	if ptr == 0 {
		return nil
	}
	if opt, ok := rt.(objc2.ReturnOptimizer); ok {
		res := opt.RetainAutoreleasedReturnValue(objc2.Pointer(ptr))
		return &Owned[T]{handle[T]{rt: rt, ptr: T(res)}}
	}
	return Retain(rt, ptr)
}

// RetainAutoreleasedShared is the shared-mode variant of
// RetainAutoreleased.
func RetainAutoreleasedShared[T objc2.Object](rt objc2.Runtime, ptr T) *Shared[T] {
	if ptr == 0 {
		return nil
	}
	if opt, ok := rt.(objc2.ReturnOptimizer); ok {
		res := opt.RetainAutoreleasedReturnValue(objc2.Pointer(ptr))
		return &Shared[T]{handle[T]{rt: rt, ptr: T(res)}}
	}
	return RetainShared(rt, ptr)
}

// GetMut returns the object for mutation. Identical to Get at runtime;
// the separate name records that mutable access is only licensed through
// an exclusive handle.
func (o *Owned[T]) GetMut() T {
	return o.Get()
}

// Release releases the handle's retain credit. The handle is spent
// afterwards; releasing twice panics.
func (o *Owned[T]) Release() {
	ptr := o.take("release")
	o.rt.Release(objc2.Pointer(ptr))
}

// Take consumes the handle and returns the raw pointer together with
// its retain credit. The caller assumes the release obligation, usually
// to hand the pointer to a foreign API that consumes a reference.
func (o *Owned[T]) Take() T {
	return o.take("take")
}

// Downgrade weakens the handle to shared mode. Pure re-tagging: no
// retain or release is performed, the credit simply moves to the new
// handle. The exclusive handle is spent afterwards.
func (o *Owned[T]) Downgrade() *Shared[T] {
	ptr := o.take("downgrade")
	return &Shared[T]{handle[T]{rt: o.rt, ptr: ptr}}
}

// Autorelease transfers the handle's release obligation to the pool and
// returns a reference valid until the pool drains. The pool must be the
// innermost open pool; otherwise Autorelease panics with the handle
// still intact.
func (o *Owned[T]) Autorelease(p *Pool) Borrowed[T] {
	p.checkDeposit()
	ptr := o.take("autorelease")
	return depositInto(p, ptr)
}

// Release releases the handle's retain credit. Other clones are
// unaffected. The handle is spent afterwards; releasing twice panics.
func (s *Shared[T]) Release() {
	ptr := s.take("release")
	s.rt.Release(objc2.Pointer(ptr))
}

// Take consumes the handle and returns the raw pointer together with
// its retain credit. The caller assumes the release obligation.
func (s *Shared[T]) Take() T {
	return s.take("take")
}

// Clone retains the object once and returns an independent handle with
// its own release obligation. It never fails: a live shared handle
// always references a not-yet-deallocated object.
func (s *Shared[T]) Clone() *Shared[T] {
	ptr := s.Get()
	res := s.rt.Retain(objc2.Pointer(ptr))
	return &Shared[T]{handle[T]{rt: s.rt, ptr: T(res)}}
}

// Autorelease transfers the handle's release obligation to the pool and
// returns a reference valid until the pool drains. The pool must be the
// innermost open pool; otherwise Autorelease panics with the handle
// still intact.
func (s *Shared[T]) Autorelease(p *Pool) Borrowed[T] {
	p.checkDeposit()
	ptr := s.take("autorelease")
	return depositInto(p, ptr)
}

// Weak derives a non-owning observer of the object. The retain count is
// unchanged and the handle stays live.
func (s *Shared[T]) Weak() *Weak[T] {
	return NewWeak(s)
}

// UnsafeAssumeOwned promotes a shared handle to exclusive without any
// foreign call, consuming the shared handle.
//
// The caller must ensure this is the only handle to the object — no
// other shared handle, no weak reference and no pool-held borrow — which
// usually means a retain count of exactly one. Nothing is checked.
func UnsafeAssumeOwned[T objc2.Object](s *Shared[T]) *Owned[T] {
	ptr := s.take("promote")
	return &Owned[T]{handle[T]{rt: s.rt, ptr: ptr}}
}

// Runtime returns the runtime managing this handle's object.
func (h *handle[T]) Runtime() objc2.Runtime {
	return h.rt
}
