package rc

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cynecx/objc2"
)

// Pool states. A pool is Open while its With callback runs, Draining
// while deferred releases are performed, and Closed afterwards.
const (
	poolOpen int32 = iota
	poolDraining
	poolClosed
)

// Pool is an autorelease scope. Depositing a handle registers exactly
// one deferred release, performed when the pool drains. Pools exist only
// inside With callbacks and are bound to the OS thread that opened them.
type Pool struct {
	rt       objc2.Runtime
	token    objc2.PoolToken
	prev     *Pool
	state    atomic.Int32
	deposits atomic.Int64
}

// Innermost open pool per goroutine. The runtime primitive always
// targets the innermost pool, so deposits are only accepted there;
// the stack lets depositInto verify the target.
var (
	topMu sync.Mutex
	tops  = map[int64]*Pool{}
)

// With opens an autorelease pool, runs fn, and drains the pool on every
// exit path, including a panic in fn. Nested calls nest strictly: the
// inner pool always drains before the outer one resumes, and while it
// is open only it accepts deposits.
//
// The goroutine is locked to its OS thread for the duration, since the
// foreign runtime keys its pool stack by thread.
func With(rt objc2.Runtime, fn func(*Pool)) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	g := gid()
	p := &Pool{rt: rt}
	topMu.Lock()
	p.prev = tops[g]
	tops[g] = p
	topMu.Unlock()

	p.token = rt.PoolPush()
	defer p.drain(g)
	fn(p)
}

// drain performs the deferred releases. Called exactly once, by With's
// defer; the state check keeps a second drain fatal rather than silent.
func (p *Pool) drain(g int64) {
	if !p.state.CompareAndSwap(poolOpen, poolDraining) {
		panic("objc2/rc: pool drained twice")
	}
	topMu.Lock()
	if p.prev == nil {
		delete(tops, g)
	} else {
		tops[g] = p.prev
	}
	topMu.Unlock()

	p.rt.PoolPop(p.token)
	p.state.Store(poolClosed)
	if n := p.deposits.Load(); n > 0 {
		Logger().Debug("autorelease pool drained", zap.Int64("deposits", n))
	}
}

// Deposits returns how many release obligations the pool has accepted.
func (p *Pool) Deposits() int {
	return int(p.deposits.Load())
}

// checkDeposit validates that the pool can accept a deposit. The pool
// must be open and must be the innermost one open on this goroutine:
// the runtime primitive defers the release against the innermost pool
// unconditionally, so accepting an outer target would leave the borrow
// outliving its object. Checked before the handle is consumed, so a
// rejected deposit leaves the handle usable.
func (p *Pool) checkDeposit() {
	if p.state.Load() != poolOpen {
		panic("objc2/rc: deposit into drained pool")
	}
	topMu.Lock()
	top := tops[gid()]
	topMu.Unlock()
	if top != p {
		panic("objc2/rc: deposit into a pool that is not the innermost open pool")
	}
}

// depositInto moves a consumed handle's obligation into the pool and
// wraps the pointer in a pool-bound reference.
func depositInto[T objc2.Object](p *Pool, ptr T) Borrowed[T] {
	p.rt.Autorelease(objc2.Pointer(ptr))
	p.deposits.Add(1)
	return Borrowed[T]{ptr: ptr, pool: p}
}

// Borrowed is a reference obtained by depositing a handle into a pool.
// It is valid for the full extent of that pool's With callback and
// becomes invalid the instant the pool drains. Borrowed references must
// stay on the thread that opened the pool.
type Borrowed[T objc2.Object] struct {
	ptr  T
	pool *Pool
}

// Get returns the object. The pool's state is re-checked on every
// access; using a reference after its pool drained panics.
func (b Borrowed[T]) Get() T {
	if b.pool == nil || b.pool.state.Load() != poolOpen {
		panic("objc2/rc: borrowed reference used outside its pool scope")
	}
	return b.ptr
}

// Raw returns the object's address, with the same validity check as Get.
func (b Borrowed[T]) Raw() objc2.Pointer {
	return objc2.Pointer(b.Get())
}

// Valid reports whether the reference's pool is still open.
func (b Borrowed[T]) Valid() bool {
	return b.pool != nil && b.pool.state.Load() == poolOpen
}

// gid returns the calling goroutine's id. With pins its goroutine to
// one OS thread, so per-goroutine nesting matches the runtime's
// per-thread pool stacks.
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
