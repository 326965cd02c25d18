package rc

import (
	"testing"

	"github.com/cynecx/objc2"
	"github.com/cynecx/objc2/sim"
)

func TestWeakDoesNotRetain(t *testing.T) {
	rt := sim.New()
	ptr := newTestObject(rt)
	s := AdoptShared(rt, ptr)

	w := s.Weak()
	if got := rt.RetainCount(objc2.Pointer(ptr)); got != 1 {
		t.Fatalf("count after weak creation = %d, want 1", got)
	}

	w.Release()
	if got := rt.RetainCount(objc2.Pointer(ptr)); got != 1 {
		t.Fatalf("count after weak release = %d, want 1", got)
	}
	s.Release()
}

func TestWeakLoadWhileLive(t *testing.T) {
	rt := sim.New()
	ptr := newTestObject(rt)
	s := AdoptShared(rt, ptr)
	w := s.Weak()

	loaded := w.Load()
	if loaded == nil {
		t.Fatal("Load returned nil for a live object")
	}
	if loaded.Get() != ptr {
		t.Fatalf("loaded = %#x, want %#x", loaded.Get(), ptr)
	}
	if got := rt.RetainCount(objc2.Pointer(ptr)); got != 2 {
		t.Fatalf("count after load = %d, want 2 (load retains)", got)
	}

	loaded.Release()
	s.Release()
	w.Release()
}

func TestWeakLoadAfterDeallocation(t *testing.T) {
	rt := sim.New()
	ptr := newTestObject(rt)
	s := AdoptShared(rt, ptr)
	w := s.Weak()

	s.Release()
	if rt.Live(objc2.Pointer(ptr)) {
		t.Fatal("object alive after last handle released")
	}

	if got := w.Load(); got != nil {
		t.Fatal("Load returned a handle to a deallocated object")
	}
	w.Release()
}

func TestWeakKeptAliveByLoadedHandle(t *testing.T) {
	rt := sim.New()
	ptr := newTestObject(rt)
	s := AdoptShared(rt, ptr)
	w := s.Weak()

	loaded := w.Load()
	s.Release()

	// The loaded handle's own credit keeps the object alive.
	if !rt.Live(objc2.Pointer(ptr)) {
		t.Fatal("object deallocated despite a live loaded handle")
	}
	if w.Load() == nil {
		t.Fatal("Load failed while a loaded handle was still live")
	}
	if got := rt.RetainCount(objc2.Pointer(ptr)); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}

	// Drop both loads; now the object goes away.
	rt.Release(objc2.Pointer(ptr))
	loaded.Release()
	if got := w.Load(); got != nil {
		t.Fatal("Load succeeded after all credits released")
	}
	w.Release()
}

func TestWeakMisusePanics(t *testing.T) {
	rt := sim.New()
	s := AdoptShared(rt, newTestObject(rt))
	w := s.Weak()

	w.Release()
	mustPanic(t, func() { w.Load() })
	mustPanic(t, func() { w.Release() })
	s.Release()
}
