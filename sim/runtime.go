package sim

import (
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cynecx/objc2"
	"github.com/cynecx/objc2/errors"
)

const (
	ptrBase   = 0x10000
	ptrStride = 0x10
)

// Counts is the per-object foreign-call trace.
type Counts struct {
	Retains      int
	Releases     int
	Autoreleases int
}

// ObjectInfo is a point-in-time view of one simulated object.
type ObjectInfo struct {
	Label string
	Ptr   objc2.Pointer
	Count int
	Weaks int
	Live  bool
}

type entry struct {
	label    string
	count    int
	valid    bool
	immortal bool
	trace    Counts
}

type poolFrame struct {
	token    objc2.PoolToken
	deferred []int
}

// Runtime simulates a manually reference-counted foreign runtime.
// Safe for concurrent use.
type Runtime struct {
	mu        sync.Mutex
	entries   []entry
	weaks     map[objc2.WeakSlot]int // slot -> entry index + 1, 0 when cleared
	nextSlot  objc2.WeakSlot
	pools     map[int64][]*poolFrame
	nextToken objc2.PoolToken
	classes   map[string]objc2.Pointer

	obsMu        sync.RWMutex
	observers    []registration
	nextObserver uint64
}

type registration struct {
	id uint64
	o  Observer
}

// New creates an empty simulated runtime.
func New() *Runtime {
	return &Runtime{
		weaks:   make(map[objc2.WeakSlot]int),
		pools:   make(map[int64][]*poolFrame),
		classes: make(map[string]objc2.Pointer),
	}
}

// NewObject allocates a simulated object with retain count 1, mirroring
// the +1 convention of alloc/init. The label is informational.
func (r *Runtime) NewObject(label string) objc2.Pointer {
	r.mu.Lock()
	r.entries = append(r.entries, entry{label: label, count: 1, valid: true})
	idx := len(r.entries) - 1
	r.mu.Unlock()

	ptr := ptrOf(idx)
	r.emit(Event{Type: EventCreated, Ptr: ptr, Label: label, Count: 1})
	return ptr
}

// Retain implements objc2.Runtime.
func (r *Runtime) Retain(p objc2.Pointer) objc2.Pointer {
	r.mu.Lock()
	e := r.live(p, "retain")
	e.count++
	e.trace.Retains++
	ev := Event{Type: EventRetained, Ptr: p, Label: e.label, Count: e.count}
	r.mu.Unlock()

	r.emit(ev)
	return p
}

// Release implements objc2.Runtime.
func (r *Runtime) Release(p objc2.Pointer) {
	r.mu.Lock()
	evs := r.releaseLocked(p)
	r.mu.Unlock()
	r.emit(evs...)
}

// Autorelease implements objc2.Runtime. It registers one deferred
// release with the innermost open pool of the calling goroutine and
// panics if no pool is open.
func (r *Runtime) Autorelease(p objc2.Pointer) objc2.Pointer {
	g := gid()
	r.mu.Lock()
	e := r.live(p, "autorelease")
	stack := r.pools[g]
	if len(stack) == 0 {
		r.mu.Unlock()
		panic("objc2/sim: autorelease with no open pool")
	}
	top := stack[len(stack)-1]
	top.deferred = append(top.deferred, idxOf(p))
	e.trace.Autoreleases++
	ev := Event{Type: EventAutoreleased, Ptr: p, Label: e.label, Count: e.count}
	r.mu.Unlock()

	r.emit(ev)
	return p
}

// PoolPush implements objc2.Runtime.
func (r *Runtime) PoolPush() objc2.PoolToken {
	g := gid()
	r.mu.Lock()
	r.nextToken++
	token := r.nextToken
	r.pools[g] = append(r.pools[g], &poolFrame{token: token})
	r.mu.Unlock()

	r.emit(Event{Type: EventPoolOpened})
	return token
}

// PoolPop implements objc2.Runtime. Pools must pop in strict LIFO order
// per goroutine; anything else panics.
func (r *Runtime) PoolPop(token objc2.PoolToken) {
	g := gid()
	r.mu.Lock()
	stack := r.pools[g]
	if len(stack) == 0 {
		r.mu.Unlock()
		panic("objc2/sim: pool pop with no open pool")
	}
	top := stack[len(stack)-1]
	if top.token != token {
		r.mu.Unlock()
		panic("objc2/sim: pool popped out of order")
	}
	r.pools[g] = stack[:len(stack)-1]

	var evs []Event
	for i := len(top.deferred) - 1; i >= 0; i-- {
		evs = append(evs, r.releaseLocked(ptrOf(top.deferred[i]))...)
	}
	r.mu.Unlock()

	evs = append(evs, Event{Type: EventPoolDrained, Count: len(top.deferred)})
	r.emit(evs...)
}

// InitWeak implements objc2.Runtime.
func (r *Runtime) InitWeak(p objc2.Pointer) objc2.WeakSlot {
	r.mu.Lock()
	e := r.live(p, "weak-register")
	r.nextSlot++
	slot := r.nextSlot
	r.weaks[slot] = idxOf(p) + 1
	ev := Event{Type: EventWeakRegistered, Ptr: p, Label: e.label, Count: e.count}
	r.mu.Unlock()

	r.emit(ev)
	return slot
}

// LoadWeakRetained implements objc2.Runtime. The load and the retain are
// one atomic step under the runtime lock, so it can never observe an
// object mid-deallocation.
func (r *Runtime) LoadWeakRetained(slot objc2.WeakSlot) objc2.Pointer {
	r.mu.Lock()
	target, ok := r.weaks[slot]
	if !ok {
		r.mu.Unlock()
		panic("objc2/sim: load through destroyed weak slot")
	}
	if target == 0 {
		r.mu.Unlock()
		return objc2.Nil
	}
	idx := target - 1
	e := &r.entries[idx]
	e.count++
	e.trace.Retains++
	ev := Event{Type: EventWeakLoaded, Ptr: ptrOf(idx), Label: e.label, Count: e.count}
	r.mu.Unlock()

	r.emit(ev)
	return ptrOf(idx)
}

// DestroyWeak implements objc2.Runtime.
func (r *Runtime) DestroyWeak(slot objc2.WeakSlot) {
	r.mu.Lock()
	if _, ok := r.weaks[slot]; !ok {
		r.mu.Unlock()
		panic("objc2/sim: weak slot destroyed twice")
	}
	delete(r.weaks, slot)
	r.mu.Unlock()

	r.emit(Event{Type: EventWeakDestroyed})
}

// RetainAutoreleasedReturnValue implements objc2.ReturnOptimizer. When
// the pointer is the most recent deposit in the calling goroutine's
// innermost pool, the pending release and the new retain cancel without
// touching the count; otherwise this is a plain retain.
func (r *Runtime) RetainAutoreleasedReturnValue(p objc2.Pointer) objc2.Pointer {
	g := gid()
	r.mu.Lock()
	r.live(p, "retain")
	if stack := r.pools[g]; len(stack) > 0 {
		top := stack[len(stack)-1]
		if n := len(top.deferred); n > 0 && top.deferred[n-1] == idxOf(p) {
			top.deferred = top.deferred[:n-1]
			r.mu.Unlock()
			return p
		}
	}
	e := &r.entries[idxOf(p)]
	e.count++
	e.trace.Retains++
	ev := Event{Type: EventRetained, Ptr: p, Label: e.label, Count: e.count}
	r.mu.Unlock()

	r.emit(ev)
	return p
}

// RegisterClass creates (or returns) an immortal class object.
func (r *Runtime) RegisterClass(name string) objc2.Pointer {
	r.mu.Lock()
	if ptr, ok := r.classes[name]; ok {
		r.mu.Unlock()
		return ptr
	}
	r.entries = append(r.entries, entry{label: name, count: 1, valid: true, immortal: true})
	ptr := ptrOf(len(r.entries) - 1)
	r.classes[name] = ptr
	r.mu.Unlock()

	r.emit(Event{Type: EventCreated, Ptr: ptr, Label: name, Count: 1})
	return ptr
}

// LookupClass resolves a registered class object by name.
func (r *Runtime) LookupClass(name string) (objc2.Pointer, error) {
	r.mu.Lock()
	ptr, ok := r.classes[name]
	r.mu.Unlock()
	if !ok {
		return objc2.Nil, errors.NotFound(errors.PhaseClass, name)
	}
	return ptr, nil
}

// RetainCount returns the object's current retain count, 0 if it has
// been deallocated.
func (r *Runtime) RetainCount(p objc2.Pointer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := r.lookup(p); e != nil && e.valid {
		return e.count
	}
	return 0
}

// Live reports whether the object has not been deallocated.
func (r *Runtime) Live(p objc2.Pointer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.lookup(p)
	return e != nil && e.valid
}

// LiveCount returns the number of non-deallocated objects, classes
// included.
func (r *Runtime) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i := range r.entries {
		if r.entries[i].valid {
			n++
		}
	}
	return n
}

// Counts returns the accumulated foreign-call trace for the object. The
// trace survives deallocation.
func (r *Runtime) Counts(p objc2.Pointer) Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := r.lookup(p); e != nil {
		return e.trace
	}
	return Counts{}
}

// Snapshot returns a view of every object ever created, in creation
// order.
func (r *Runtime) Snapshot() []ObjectInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]ObjectInfo, 0, len(r.entries))
	for i := range r.entries {
		e := &r.entries[i]
		weaks := 0
		for _, target := range r.weaks {
			if target == i+1 {
				weaks++
			}
		}
		infos = append(infos, ObjectInfo{
			Label: e.label,
			Ptr:   ptrOf(i),
			Count: e.count,
			Weaks: weaks,
			Live:  e.valid,
		})
	}
	return infos
}

// Subscribe adds an observer for runtime events and returns a function
// that removes it again.
func (r *Runtime) Subscribe(o Observer) (cancel func()) {
	r.obsMu.Lock()
	r.nextObserver++
	id := r.nextObserver
	r.observers = append(r.observers, registration{id: id, o: o})
	r.obsMu.Unlock()

	return func() {
		r.obsMu.Lock()
		defer r.obsMu.Unlock()
		for i, reg := range r.observers {
			if reg.id == id {
				r.observers = append(r.observers[:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// releaseLocked decrements the count and deallocates at zero, clearing
// weak slots in the same critical section. Returns the events to emit
// once the lock is dropped.
func (r *Runtime) releaseLocked(p objc2.Pointer) []Event {
	e := r.live(p, "release")
	if e.immortal {
		e.trace.Releases++
		return []Event{{Type: EventReleased, Ptr: p, Label: e.label, Count: e.count}}
	}
	e.count--
	e.trace.Releases++
	evs := []Event{{Type: EventReleased, Ptr: p, Label: e.label, Count: e.count}}
	if e.count == 0 {
		e.valid = false
		idx := idxOf(p)
		for slot, target := range r.weaks {
			if target == idx+1 {
				r.weaks[slot] = 0
			}
		}
		evs = append(evs, Event{Type: EventDeallocated, Ptr: p, Label: e.label})
	}
	return evs
}

// live returns the entry for a pointer, panicking on anything that is
// not a live object: that is the simulator turning undefined behavior
// into a test failure. Callers hold r.mu; live releases it before
// panicking so the runtime stays usable after a recovered panic.
func (r *Runtime) live(p objc2.Pointer, op string) *entry {
	e := r.lookup(p)
	if e == nil {
		r.mu.Unlock()
		panic("objc2/sim: " + op + " of unknown pointer")
	}
	if !e.valid {
		r.mu.Unlock()
		panic("objc2/sim: " + op + " of deallocated object (" + e.label + ")")
	}
	return e
}

func (r *Runtime) lookup(p objc2.Pointer) *entry {
	if p < ptrBase || (p-ptrBase)%ptrStride != 0 {
		return nil
	}
	idx := idxOf(p)
	if idx >= len(r.entries) {
		return nil
	}
	return &r.entries[idx]
}

func (r *Runtime) emit(evs ...Event) {
	if len(evs) == 0 {
		return
	}
	// Copied so that a concurrent cancel, which compacts the slice in
	// place, cannot race the iteration below.
	r.obsMu.RLock()
	observers := slices.Clone(r.observers)
	r.obsMu.RUnlock()
	for _, ev := range evs {
		Logger().Debug("runtime event",
			zap.Stringer("type", ev.Type),
			zap.String("label", ev.Label),
			zap.Int("count", ev.Count))
		for _, reg := range observers {
			reg.o.OnRuntimeEvent(ev)
		}
	}
}

func ptrOf(idx int) objc2.Pointer {
	return objc2.Pointer(ptrBase + idx*ptrStride)
}

func idxOf(p objc2.Pointer) int {
	return int(p-ptrBase) / ptrStride
}

// gid returns the calling goroutine's id. Pool stacks are keyed by
// goroutine; rc.With pins its goroutine to one OS thread, so this
// matches the real runtime's per-thread stacks for code going through
// the pool API.
func gid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(s, ' '); i > 0 {
		if id, err := strconv.ParseInt(s[:i], 10, 64); err == nil {
			return id
		}
	}
	return 0
}
