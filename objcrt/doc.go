// Package objcrt binds the real Objective-C runtime.
//
// On darwin it loads libobjc with purego and routes the objc2.Runtime
// primitives to objc_retain, objc_release, objc_autorelease, the
// autorelease-pool push/pop pair and the weak-reference entry points,
// all without cgo. The runtime also implements objc2.ReturnOptimizer
// via objc_retainAutoreleasedReturnValue and class.Loader via
// objc_getClass.
//
// On other platforms New returns a structured Unavailable error.
package objcrt
