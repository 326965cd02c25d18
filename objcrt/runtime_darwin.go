//go:build darwin

package objcrt

import (
	"sync"

	"github.com/ebitengine/purego"

	"github.com/cynecx/objc2"
	"github.com/cynecx/objc2/errors"
)

const libobjcPath = "/usr/lib/libobjc.A.dylib"

// Runtime is the real Objective-C runtime. Safe for concurrent use; the
// underlying counter operations are atomic inside libobjc.
type Runtime struct {
	retain           func(uintptr) uintptr
	release          func(uintptr)
	autorelease      func(uintptr) uintptr
	poolPush         func() uintptr
	poolPop          func(uintptr)
	initWeak         func(*uintptr, uintptr) uintptr
	loadWeakRetained func(*uintptr) uintptr
	destroyWeak      func(*uintptr)
	retainAutoRV     func(uintptr) uintptr
	getClass         func(string) uintptr

	mu       sync.Mutex
	slots    map[objc2.WeakSlot]*uintptr
	nextSlot objc2.WeakSlot
}

// New loads libobjc and resolves the memory-management entry points.
func New() (*Runtime, error) {
	lib, err := purego.Dlopen(libobjcPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindUnavailable, err, "loading libobjc")
	}

	r := &Runtime{slots: make(map[objc2.WeakSlot]*uintptr)}
	purego.RegisterLibFunc(&r.retain, lib, "objc_retain")
	purego.RegisterLibFunc(&r.release, lib, "objc_release")
	purego.RegisterLibFunc(&r.autorelease, lib, "objc_autorelease")
	purego.RegisterLibFunc(&r.poolPush, lib, "objc_autoreleasePoolPush")
	purego.RegisterLibFunc(&r.poolPop, lib, "objc_autoreleasePoolPop")
	purego.RegisterLibFunc(&r.initWeak, lib, "objc_initWeak")
	purego.RegisterLibFunc(&r.loadWeakRetained, lib, "objc_loadWeakRetained")
	purego.RegisterLibFunc(&r.destroyWeak, lib, "objc_destroyWeak")
	purego.RegisterLibFunc(&r.retainAutoRV, lib, "objc_retainAutoreleasedReturnValue")
	purego.RegisterLibFunc(&r.getClass, lib, "objc_getClass")
	return r, nil
}

// Retain implements objc2.Runtime.
func (r *Runtime) Retain(p objc2.Pointer) objc2.Pointer {
	return objc2.Pointer(r.retain(uintptr(p)))
}

// Release implements objc2.Runtime.
func (r *Runtime) Release(p objc2.Pointer) {
	r.release(uintptr(p))
}

// Autorelease implements objc2.Runtime.
func (r *Runtime) Autorelease(p objc2.Pointer) objc2.Pointer {
	return objc2.Pointer(r.autorelease(uintptr(p)))
}

// PoolPush implements objc2.Runtime.
func (r *Runtime) PoolPush() objc2.PoolToken {
	return objc2.PoolToken(r.poolPush())
}

// PoolPop implements objc2.Runtime.
func (r *Runtime) PoolPop(token objc2.PoolToken) {
	r.poolPop(uintptr(token))
}

// InitWeak implements objc2.Runtime. The weak location is allocated on
// the Go heap and kept reachable through the slot table until
// DestroyWeak.
func (r *Runtime) InitWeak(p objc2.Pointer) objc2.WeakSlot {
	loc := new(uintptr)
	r.initWeak(loc, uintptr(p))

	r.mu.Lock()
	r.nextSlot++
	slot := r.nextSlot
	r.slots[slot] = loc
	r.mu.Unlock()
	return slot
}

// LoadWeakRetained implements objc2.Runtime.
func (r *Runtime) LoadWeakRetained(slot objc2.WeakSlot) objc2.Pointer {
	r.mu.Lock()
	loc, ok := r.slots[slot]
	r.mu.Unlock()
	if !ok {
		panic("objc2/objcrt: load through destroyed weak slot")
	}
	return objc2.Pointer(r.loadWeakRetained(loc))
}

// DestroyWeak implements objc2.Runtime.
func (r *Runtime) DestroyWeak(slot objc2.WeakSlot) {
	r.mu.Lock()
	loc, ok := r.slots[slot]
	delete(r.slots, slot)
	r.mu.Unlock()
	if !ok {
		panic("objc2/objcrt: weak slot destroyed twice")
	}
	r.destroyWeak(loc)
}

// RetainAutoreleasedReturnValue implements objc2.ReturnOptimizer. The
// handoff only engages when this call directly follows the foreign call
// that returned the value; otherwise libobjc falls back to a plain
// retain, so semantics are unchanged either way.
func (r *Runtime) RetainAutoreleasedReturnValue(p objc2.Pointer) objc2.Pointer {
	return objc2.Pointer(r.retainAutoRV(uintptr(p)))
}

// LookupClass implements class.Loader.
func (r *Runtime) LookupClass(name string) (objc2.Pointer, error) {
	cls := r.getClass(name)
	if cls == 0 {
		return objc2.Nil, errors.NotFound(errors.PhaseClass, name)
	}
	return objc2.Pointer(cls), nil
}
