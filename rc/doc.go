// Package rc implements ownership handles for foreign reference-counted
// objects.
//
// # Handles
//
// A handle pairs a non-nil object pointer with exactly one retain credit:
// the obligation to call release exactly once. The credit is consumed by
// exactly one of Release, Downgrade, Autorelease or a Send; afterwards the
// handle is spent and any further use panics.
//
// Two handle types select the ownership mode:
//
//	Owned[T]   exclusive: sole reference to the credit, licenses
//	           mutation, never cloned
//	Shared[T]  cloneable: immutable access only, Clone retains
//
// Downgrading Owned to Shared is free and always sound. The reverse is
// only available through UnsafeAssumeOwned, whose preconditions the
// caller must prove externally.
//
// # Autorelease Pools
//
// Pools are opened only through With, which drains them on every exit
// path of the callback. That scoping makes draining a pool while an inner
// pool is still open structurally impossible. Depositing a handle into a
// pool transfers its release obligation to the pool and yields a
// Borrowed reference that is valid exactly until the pool drains.
//
// # Thread Transfer
//
// Handles cross goroutines through one-shot envelopes. The constraints on
// SendOwned, SendShared and SendWeak encode the transfer rules: an
// exclusive handle needs the pointee to be Movable; shared handles and
// weak references additionally need Shareable, because they expose
// concurrent reads through every clone. Borrowed references have no
// transfer API at all: they are bound to the pool's thread.
package rc
