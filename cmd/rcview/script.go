package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cynecx/objc2"
	"github.com/cynecx/objc2/errors"
	"github.com/cynecx/objc2/sim"
)

// inspector drives a simulated runtime through a small command
// language, shared between script mode and the TUI.
//
//	new <label>          create an object with one retain credit
//	retain <label>       retain
//	release <label>      release, deallocating at zero
//	autorelease <label>  defer one release to the innermost pool
//	push / pop           open / drain an autorelease pool
//	weak <label>         register a weak reference
//	load <label>         load through the weak reference (retains)
//	unweak <label>       destroy the weak reference
//	class <name>         register a class object
//	ls                   list all objects
//	counts <label>       per-object call trace
type inspector struct {
	rt     *sim.Runtime
	objs   map[string]objc2.Pointer
	weaks  map[string]objc2.WeakSlot
	pools  []objc2.PoolToken
	events []string
	cancel func()
}

func newInspector() *inspector {
	in := &inspector{
		rt:    sim.New(),
		objs:  make(map[string]objc2.Pointer),
		weaks: make(map[string]objc2.WeakSlot),
	}
	in.cancel = in.rt.Subscribe(sim.ObserverFunc(func(ev sim.Event) {
		in.events = append(in.events, formatEvent(ev))
	}))
	return in
}

func formatEvent(ev sim.Event) string {
	switch ev.Type {
	case sim.EventPoolOpened:
		return "pool opened"
	case sim.EventPoolDrained:
		return fmt.Sprintf("pool drained (%d deferred)", ev.Count)
	case sim.EventWeakDestroyed:
		return "weak destroyed"
	case sim.EventDeallocated:
		return fmt.Sprintf("%s: deallocated", ev.Label)
	default:
		return fmt.Sprintf("%s: %s (count %d)", ev.Label, ev.Type, ev.Count)
	}
}

func (in *inspector) close() {
	in.cancel()
}

func scriptErr(detail string, args ...any) error {
	return errors.New(errors.PhaseScript, errors.KindInvalidInput).
		Detail(detail, args...).
		Build()
}

// eval executes one command line. Comments start with '#'. Contract
// violations in the runtime surface as panics; eval converts them to
// errors so a script can probe misuse.
func (in *inspector) eval(line string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = scriptErr("%v", r)
		}
	}()

	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "new":
		label, err := one(cmd, args)
		if err != nil {
			return "", err
		}
		if _, ok := in.objs[label]; ok {
			return "", scriptErr("%q already exists", label)
		}
		in.objs[label] = in.rt.NewObject(label)
		return fmt.Sprintf("%s = %#x", label, in.objs[label]), nil

	case "retain":
		p, err := in.object(cmd, args)
		if err != nil {
			return "", err
		}
		in.rt.Retain(p)
		return fmt.Sprintf("count %d", in.rt.RetainCount(p)), nil

	case "release":
		p, err := in.object(cmd, args)
		if err != nil {
			return "", err
		}
		in.rt.Release(p)
		if !in.rt.Live(p) {
			return "deallocated", nil
		}
		return fmt.Sprintf("count %d", in.rt.RetainCount(p)), nil

	case "autorelease":
		p, err := in.object(cmd, args)
		if err != nil {
			return "", err
		}
		in.rt.Autorelease(p)
		return "deferred", nil

	case "push":
		in.pools = append(in.pools, in.rt.PoolPush())
		return fmt.Sprintf("pool depth %d", len(in.pools)), nil

	case "pop":
		if len(in.pools) == 0 {
			return "", scriptErr("no open pool")
		}
		token := in.pools[len(in.pools)-1]
		in.pools = in.pools[:len(in.pools)-1]
		in.rt.PoolPop(token)
		return fmt.Sprintf("pool depth %d", len(in.pools)), nil

	case "weak":
		label, err := one(cmd, args)
		if err != nil {
			return "", err
		}
		p, ok := in.objs[label]
		if !ok {
			return "", scriptErr("no object %q", label)
		}
		if _, ok := in.weaks[label]; ok {
			return "", scriptErr("weak %q already exists", label)
		}
		in.weaks[label] = in.rt.InitWeak(p)
		return "registered", nil

	case "load":
		label, err := one(cmd, args)
		if err != nil {
			return "", err
		}
		slot, ok := in.weaks[label]
		if !ok {
			return "", scriptErr("no weak %q", label)
		}
		p := in.rt.LoadWeakRetained(slot)
		if p == objc2.Nil {
			return "nil (deallocated)", nil
		}
		return fmt.Sprintf("%#x, count %d", p, in.rt.RetainCount(p)), nil

	case "unweak":
		label, err := one(cmd, args)
		if err != nil {
			return "", err
		}
		slot, ok := in.weaks[label]
		if !ok {
			return "", scriptErr("no weak %q", label)
		}
		delete(in.weaks, label)
		in.rt.DestroyWeak(slot)
		return "destroyed", nil

	case "class":
		name, err := one(cmd, args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %#x", name, in.rt.RegisterClass(name)), nil

	case "ls":
		return in.list(), nil

	case "counts":
		p, err := in.object(cmd, args)
		if err != nil {
			return "", err
		}
		c := in.rt.Counts(p)
		return fmt.Sprintf("retains %d, releases %d, autoreleases %d",
			c.Retains, c.Releases, c.Autoreleases), nil
	}

	return "", scriptErr("unknown command %q", cmd)
}

func one(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", scriptErr("%s takes one argument", cmd)
	}
	return args[0], nil
}

func (in *inspector) object(cmd string, args []string) (objc2.Pointer, error) {
	label, err := one(cmd, args)
	if err != nil {
		return objc2.Nil, err
	}
	p, ok := in.objs[label]
	if !ok {
		return objc2.Nil, scriptErr("no object %q", label)
	}
	return p, nil
}

func (in *inspector) list() string {
	infos := in.rt.Snapshot()
	if len(infos) == 0 {
		return "no objects"
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Live && !infos[j].Live
	})
	var b strings.Builder
	for i, info := range infos {
		if i > 0 {
			b.WriteByte('\n')
		}
		state := "live"
		if !info.Live {
			state = "dead"
		}
		fmt.Fprintf(&b, "%-12s %#-8x %s count=%d weaks=%d",
			info.Label, uint64(info.Ptr), state, info.Count, info.Weaks)
	}
	return b.String()
}
