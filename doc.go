// Package objc2 embeds manually reference-counted Objective-C objects in
// Go without requiring cooperation from the Objective-C runtime.
//
// The foreign runtime exposes objects only through retain, release and
// autorelease operations, none of which are visible to Go's memory model.
// This module encodes that discipline into Go types: every live handle
// corresponds to exactly one retain credit, and that credit is released
// exactly once.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	objc2/        Root package with the Runtime primitives boundary and
//	              the thread-transfer marker interfaces
//	├── rc/       Ownership core: Owned and Shared handles, autorelease
//	              pools, weak references, cross-thread envelopes
//	├── encode/   Objective-C @encode type encodings, printer and parser
//	├── class/    Class objects and cached name lookup
//	├── objcrt/   Real libobjc runtime via purego (darwin)
//	├── sim/      In-memory simulated runtime with call tracing, used by
//	              tests and tooling
//	└── errors/   Structured error types
//
// # Quick Start
//
// Wrap a pointer returned at +1 (alloc/init, new, copy), use it, and
// release it:
//
//	rt, err := objcrt.New()
//	if err != nil {
//		return err
//	}
//	obj := rc.Adopt(rt, newObject(rt))
//	defer obj.Release()
//
// Downgrade to a cloneable shared handle:
//
//	shared := obj.Downgrade()
//	other := shared.Clone()
//
// Defer a release to a pool scope:
//
//	rc.With(rt, func(p *rc.Pool) {
//		ref := shared.Autorelease(p)
//		use(ref.Get())
//	}) // drained here; ref is now invalid
//
// Observe an object without keeping it alive:
//
//	weak := shared.Weak()
//	shared.Release()
//	if h := weak.Load(); h != nil {
//		// still alive somewhere else
//		h.Release()
//	}
package objc2
