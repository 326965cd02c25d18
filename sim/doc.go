// Package sim provides an in-memory foreign runtime for tests and
// tooling.
//
// It implements objc2.Runtime over a table of simulated objects with
// observable retain counts, per-goroutine autorelease pool stacks with
// strict LIFO validation, and a weak table that is cleared atomically
// with deallocation. Every retain, release and autorelease is counted
// per object, so tests can assert exact call traces.
//
// Contract violations the real runtime would turn into undefined
// behavior — releasing past zero, popping pools out of order, touching a
// deallocated object — panic here instead, which is what makes the
// simulator useful as a test oracle.
//
// Observers can subscribe to lifecycle events:
//
//	rt := sim.New()
//	rt.Subscribe(obs) // obs.OnRuntimeEvent(e) for every foreign call
//
// The simulator also implements objc2.ReturnOptimizer: when the pointer
// being retained is the most recent deposit in the innermost pool, the
// pending release and the new retain annihilate without touching the
// count, mirroring the handoff the real runtime performs for
// objc_retainAutoreleasedReturnValue.
package sim
