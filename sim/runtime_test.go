package sim

import (
	"errors"
	"sync"
	"testing"

	"github.com/cynecx/objc2"
	objcerrors "github.com/cynecx/objc2/errors"
)

func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}

func TestRetainReleaseLifecycle(t *testing.T) {
	rt := New()
	p := rt.NewObject("obj")

	if got := rt.RetainCount(p); got != 1 {
		t.Fatalf("count after create = %d, want 1", got)
	}
	rt.Retain(p)
	if got := rt.RetainCount(p); got != 2 {
		t.Fatalf("count after retain = %d, want 2", got)
	}
	rt.Release(p)
	if !rt.Live(p) {
		t.Fatal("object dead with one credit remaining")
	}
	rt.Release(p)
	if rt.Live(p) {
		t.Fatal("object alive after final release")
	}
	if got := rt.RetainCount(p); got != 0 {
		t.Fatalf("count after dealloc = %d, want 0", got)
	}
	c := rt.Counts(p)
	if c.Retains != 1 || c.Releases != 2 {
		t.Fatalf("trace = %+v, want 1 retain, 2 releases", c)
	}
}

func TestMisusePanics(t *testing.T) {
	rt := New()
	p := rt.NewObject("obj")
	rt.Release(p)

	mustPanic(t, func() { rt.Release(p) })
	mustPanic(t, func() { rt.Retain(p) })
	mustPanic(t, func() { rt.Retain(objc2.Pointer(0xdead)) })
	mustPanic(t, func() { rt.Autorelease(rt.NewObject("no-pool")) })
	mustPanic(t, func() { rt.PoolPop(objc2.PoolToken(99)) })
}

func TestUsableAfterRecoveredMisuse(t *testing.T) {
	rt := New()
	dead := rt.NewObject("dead")
	rt.Release(dead)

	// Recovering a contract-violation panic must leave the runtime
	// unlocked and serviceable.
	mustPanic(t, func() { rt.Retain(dead) })
	mustPanic(t, func() { rt.Release(dead) })
	mustPanic(t, func() { rt.InitWeak(dead) })
	mustPanic(t, func() { rt.RetainAutoreleasedReturnValue(dead) })

	p := rt.NewObject("after")
	rt.Retain(p)
	rt.Release(p)
	if got := rt.RetainCount(p); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	rt.Release(p)
}

func TestPoolDrainReleasesDeferred(t *testing.T) {
	rt := New()
	p := rt.NewObject("obj")

	token := rt.PoolPush()
	rt.Autorelease(p)
	if !rt.Live(p) {
		t.Fatal("autorelease released eagerly")
	}
	rt.PoolPop(token)
	if rt.Live(p) {
		t.Fatal("object alive after pool drain")
	}
}

func TestPoolLIFOViolationPanics(t *testing.T) {
	rt := New()
	outer := rt.PoolPush()
	inner := rt.PoolPush()

	mustPanic(t, func() { rt.PoolPop(outer) })

	rt.PoolPop(inner)
	rt.PoolPop(outer)
}

func TestPoolDrainOrderIsReverse(t *testing.T) {
	rt := New()
	a := rt.NewObject("a")
	b := rt.NewObject("b")

	var order []objc2.Pointer
	cancel := rt.Subscribe(ObserverFunc(func(ev Event) {
		if ev.Type == EventDeallocated {
			order = append(order, ev.Ptr)
		}
	}))
	defer cancel()

	token := rt.PoolPush()
	rt.Autorelease(a)
	rt.Autorelease(b)
	rt.PoolPop(token)

	if len(order) != 2 || order[0] != b || order[1] != a {
		t.Fatalf("dealloc order = %v, want [b a]", order)
	}
}

func TestWeakSlotClearsOnDealloc(t *testing.T) {
	rt := New()
	p := rt.NewObject("obj")
	slot := rt.InitWeak(p)

	if got := rt.LoadWeakRetained(slot); got != p {
		t.Fatalf("weak load = %#x, want %#x", got, p)
	}
	rt.Release(p) // drop the load's retain
	rt.Release(p) // drop the creation credit, deallocating

	if got := rt.LoadWeakRetained(slot); got != objc2.Nil {
		t.Fatalf("weak load after dealloc = %#x, want nil", got)
	}
	rt.DestroyWeak(slot)
	mustPanic(t, func() { rt.DestroyWeak(slot) })
	mustPanic(t, func() { rt.LoadWeakRetained(slot) })
}

func TestReturnValueOptimization(t *testing.T) {
	rt := New()
	p := rt.NewObject("obj")

	token := rt.PoolPush()

	// Fast path: the pointer is the newest deposit, so the pending
	// release and the retain cancel without touching the count.
	rt.Autorelease(p)
	rt.RetainAutoreleasedReturnValue(p)
	if got := rt.RetainCount(p); got != 1 {
		t.Fatalf("count after cancelled handoff = %d, want 1", got)
	}

	// Slow path: nothing deposited, so it degrades to a plain retain.
	rt.RetainAutoreleasedReturnValue(p)
	if got := rt.RetainCount(p); got != 2 {
		t.Fatalf("count after plain retain = %d, want 2", got)
	}

	rt.PoolPop(token)
	if got := rt.RetainCount(p); got != 2 {
		t.Fatalf("count after drain = %d, want 2", got)
	}
	rt.Release(p)
	rt.Release(p)
}

func TestClassRegistry(t *testing.T) {
	rt := New()
	a := rt.RegisterClass("NSString")
	if again := rt.RegisterClass("NSString"); again != a {
		t.Fatal("re-registration returned a different class object")
	}

	got, err := rt.LookupClass("NSString")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != a {
		t.Fatalf("lookup = %#x, want %#x", got, a)
	}

	_, err = rt.LookupClass("NSMissing")
	var oe *objcerrors.Error
	if !errors.As(err, &oe) || oe.Kind != objcerrors.KindNotFound {
		t.Fatalf("lookup of unknown class: %v", err)
	}

	// Classes are immortal: release does not deallocate.
	rt.Release(a)
	if !rt.Live(a) {
		t.Fatal("class deallocated by release")
	}
}

func TestSnapshot(t *testing.T) {
	rt := New()
	a := rt.NewObject("a")
	rt.NewObject("b")
	rt.InitWeak(a)
	rt.Release(a)

	infos := rt.Snapshot()
	if len(infos) != 2 {
		t.Fatalf("snapshot length = %d, want 2", len(infos))
	}
	if infos[0].Label != "a" || infos[0].Live || infos[0].Weaks != 1 {
		t.Fatalf("entry a = %+v", infos[0])
	}
	if infos[1].Label != "b" || !infos[1].Live || infos[1].Count != 1 {
		t.Fatalf("entry b = %+v", infos[1])
	}
	if got := rt.LiveCount(); got != 1 {
		t.Fatalf("live count = %d, want 1", got)
	}
}

func TestConcurrentRetainRelease(t *testing.T) {
	rt := New()
	p := rt.NewObject("obj")

	const workers = 8
	const rounds = 200
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				rt.Retain(p)
				rt.Release(p)
			}
		}()
	}
	wg.Wait()

	if got := rt.RetainCount(p); got != 1 {
		t.Fatalf("count after balanced churn = %d, want 1", got)
	}
	c := rt.Counts(p)
	if c.Retains != workers*rounds || c.Releases != workers*rounds {
		t.Fatalf("trace = %+v, want %d each", c, workers*rounds)
	}
}

func TestEventStream(t *testing.T) {
	rt := New()

	var types []EventType
	cancel := rt.Subscribe(ObserverFunc(func(ev Event) { types = append(types, ev.Type) }))

	p := rt.NewObject("obj")
	rt.Retain(p)
	rt.Release(p)
	rt.Release(p)

	want := []EventType{EventCreated, EventRetained, EventReleased, EventReleased, EventDeallocated}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event[%d] = %v, want %v", i, types[i], want[i])
		}
	}

	cancel()
	rt.NewObject("after")
	if len(types) != len(want) {
		t.Fatal("observer still notified after unsubscribe")
	}
}

func TestConcurrentObserverChurn(t *testing.T) {
	rt := New()
	p := rt.NewObject("obj")

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			cancel := rt.Subscribe(ObserverFunc(func(Event) {}))
			cancel()
		}
	}()

	for range 500 {
		rt.Retain(p)
		rt.Release(p)
	}
	close(stop)
	wg.Wait()

	if got := rt.RetainCount(p); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
}
