package objc2

// Pointer is the address of a foreign Objective-C object.
// The zero value means "no object"; every other value is assumed to point
// at a live, properly aligned object owned by the foreign runtime.
type Pointer uintptr

// Nil is the absent object pointer.
const Nil Pointer = 0

// Selector is an opaque method selector as registered with the foreign
// runtime. It is only meaningful to a Sender.
type Selector uintptr

// PoolToken identifies an open autorelease pool to the runtime that
// pushed it. Tokens are opaque and must be popped in LIFO order.
type PoolToken uintptr

// WeakSlot identifies a weak reference location registered with the
// runtime. Slots stay valid until DestroyWeak, independent of the
// referenced object's lifetime.
type WeakSlot uintptr

// Object constrains the typed object representations used by handle
// types. Bindings declare classes as named uintptr types:
//
//	type NSString objc2.Pointer
//
// which convert freely to and from Pointer.
type Object interface {
	~uintptr
}

// Movable marks object types whose sole owner may move them to another
// goroutine or thread. Implement it with a no-op method on the binding
// type:
//
//	func (NSString) MovableObject() {}
type Movable interface {
	Object
	MovableObject()
}

// Shareable marks object types that are safe for concurrent immutable
// access from multiple threads at once. A shared handle hands out
// read access through every clone, so crossing threads requires both
// Movable and Shareable; an exclusive handle needs only Movable.
type Shareable interface {
	Object
	ShareableObject()
}

// MovableShareable combines both thread-transfer capabilities. Shared
// handles and weak references require it to cross goroutines.
type MovableShareable interface {
	Movable
	Shareable
}

// Runtime is the set of memory-management primitives supplied by the
// foreign runtime. Implementations must be safe for concurrent use; the
// retain counter mutations are assumed atomic on the foreign side.
//
// Calling Release without a matching retain credit, or popping pools out
// of order, is a contract violation with unspecified behavior: these
// primitives are trusted black boxes and are never validated or retried.
type Runtime interface {
	// Retain increments the object's retain count and returns the same
	// pointer. The pointer must reference a live object.
	Retain(Pointer) Pointer

	// Release decrements the retain count, deallocating the object when
	// it reaches zero. The pointer is invalid afterwards if it did.
	Release(Pointer)

	// Autorelease schedules one release against the innermost open pool
	// on the current thread and returns the same pointer.
	Autorelease(Pointer) Pointer

	// PoolPush opens a new autorelease pool on the current thread.
	PoolPush() PoolToken

	// PoolPop drains the pool identified by the token, performing every
	// deferred release registered since the matching PoolPush.
	PoolPop(PoolToken)

	// InitWeak registers a weak reference to the object and returns the
	// slot observing it. The retain count is unchanged.
	InitWeak(Pointer) WeakSlot

	// LoadWeakRetained atomically either retains the slot's object and
	// returns it, or returns Nil if the object has been deallocated.
	LoadWeakRetained(WeakSlot) Pointer

	// DestroyWeak deregisters the slot. The retain count is unchanged.
	DestroyWeak(WeakSlot)
}

// ReturnOptimizer is optionally implemented by runtimes that support the
// retain-after-call fast path for freshly autoreleased return values
// (objc_retainAutoreleasedReturnValue). Semantically identical to
// Retain; the runtime may skip the autorelease-pool round trip when the
// calling sequence allows it.
type ReturnOptimizer interface {
	RetainAutoreleasedReturnValue(Pointer) Pointer
}

// Sender dispatches a message to a foreign object. Dispatch itself is
// outside this module; the interface exists so binding layers can accept
// and return handle-managed pointers without touching retain counts.
type Sender interface {
	Send(recv Pointer, sel Selector, args ...uintptr) Pointer
}
