//go:build !darwin

package objcrt

import (
	"github.com/cynecx/objc2"
	"github.com/cynecx/objc2/errors"
)

// Runtime is the real Objective-C runtime, which only exists on darwin.
// On other platforms the type is a placeholder so that code referencing
// it still compiles; New never hands one out.
type Runtime struct{}

// New reports that the Objective-C runtime is unavailable.
func New() (*Runtime, error) {
	return nil, errors.Unavailable(errors.PhaseRuntime, "Objective-C runtime requires darwin")
}

func (r *Runtime) Retain(objc2.Pointer) objc2.Pointer      { panic(errUnavailable) }
func (r *Runtime) Release(objc2.Pointer)                   { panic(errUnavailable) }
func (r *Runtime) Autorelease(objc2.Pointer) objc2.Pointer { panic(errUnavailable) }
func (r *Runtime) PoolPush() objc2.PoolToken               { panic(errUnavailable) }
func (r *Runtime) PoolPop(objc2.PoolToken)                 { panic(errUnavailable) }
func (r *Runtime) InitWeak(objc2.Pointer) objc2.WeakSlot   { panic(errUnavailable) }
func (r *Runtime) LoadWeakRetained(objc2.WeakSlot) objc2.Pointer {
	panic(errUnavailable)
}
func (r *Runtime) DestroyWeak(objc2.WeakSlot) { panic(errUnavailable) }
func (r *Runtime) RetainAutoreleasedReturnValue(objc2.Pointer) objc2.Pointer {
	panic(errUnavailable)
}
func (r *Runtime) LookupClass(string) (objc2.Pointer, error) {
	return objc2.Nil, errors.Unavailable(errors.PhaseRuntime, "Objective-C runtime requires darwin")
}

const errUnavailable = "objc2/objcrt: runtime unavailable on this platform"
