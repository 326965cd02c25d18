package class

import (
	stderrors "errors"
	"testing"

	"github.com/cynecx/objc2"
	"github.com/cynecx/objc2/errors"
	"github.com/cynecx/objc2/sim"
)

// countingLoader wraps a loader and counts trips to the runtime.
type countingLoader struct {
	inner Loader
	calls int
}

func (l *countingLoader) LookupClass(name string) (objc2.Pointer, error) {
	l.calls++
	return l.inner.LookupClass(name)
}

type nsString objc2.Pointer

func (nsString) ClassName() string { return "NSString" }

func TestRegistryCachesLookups(t *testing.T) {
	rt := sim.New()
	want := rt.RegisterClass("NSString")
	loader := &countingLoader{inner: rt}
	reg := NewRegistry(loader)

	for range 3 {
		cls, err := reg.Get("NSString")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if cls.Pointer() != want {
			t.Fatalf("Get = %#x, want %#x", cls.Pointer(), want)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("loader called %d times, want 1", loader.calls)
	}
}

func TestRegistryUnknownClass(t *testing.T) {
	reg := NewRegistry(sim.New())

	cls, err := reg.Get("NSMissing")
	if err == nil {
		t.Fatal("lookup of unknown class succeeded")
	}
	if cls.Valid() {
		t.Fatal("invalid class reported as valid")
	}
	var oe *errors.Error
	if !stderrors.As(err, &oe) || oe.Kind != errors.KindNotFound {
		t.Fatalf("error = %v, want not-found", err)
	}

	// Failures are not cached.
	rt := sim.New()
	loader := &countingLoader{inner: rt}
	reg = NewRegistry(loader)
	reg.Get("NSMissing")
	reg.Get("NSMissing")
	if loader.calls != 2 {
		t.Fatalf("loader called %d times after two failed gets, want 2", loader.calls)
	}
}

func TestFor(t *testing.T) {
	rt := sim.New()
	want := rt.RegisterClass("NSString")
	reg := NewRegistry(rt)

	cls, err := For[nsString](reg)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if cls.Pointer() != want {
		t.Fatalf("For = %#x, want %#x", cls.Pointer(), want)
	}
}

func TestMustGet(t *testing.T) {
	rt := sim.New()
	rt.RegisterClass("NSObject")
	reg := NewRegistry(rt)

	if cls := reg.MustGet("NSObject"); !cls.Valid() {
		t.Fatal("MustGet returned an invalid class")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("MustGet of unknown class did not panic")
		}
	}()
	reg.MustGet("NSMissing")
}
