package memhost

import (
	"fmt"
	"sync"

	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/keys"
)

var (
	_ host.Namespace    = (*Namespace)(nil)
	_ host.Generational = (*Namespace)(nil)
)

// Namespace is one package of a Host.
type Namespace struct {
	host *Host
	name string

	genMu  sync.Mutex
	gen    uint64
	hasGen bool
}

func (ns *Namespace) Name() string { return ns.name }

// Range yields every slot of the package. Unless the host was built
// WithStableOrder, the order changes from call to call.
func (ns *Namespace) Range(fn func(name string, v host.Value) bool) {
	ns.host.rangeNamespace(ns.name, fn)
}

// Generation reports the package's cache marker, if one was set.
func (ns *Namespace) Generation() (uint64, bool) {
	ns.genMu.Lock()
	defer ns.genMu.Unlock()
	return ns.gen, ns.hasGen
}

// SetGeneration sets the cache marker. Once set, every change to a sub slot
// increments it.
func (ns *Namespace) SetGeneration(gen uint64) {
	ns.genMu.Lock()
	defer ns.genMu.Unlock()
	ns.gen, ns.hasGen = gen, true
}

// ClearGeneration removes the cache marker.
func (ns *Namespace) ClearGeneration() {
	ns.genMu.Lock()
	defer ns.genMu.Unlock()
	ns.gen, ns.hasGen = 0, false
}

func (ns *Namespace) touch(kind host.Kind) {
	if kind != host.KindCallable {
		return
	}
	ns.genMu.Lock()
	defer ns.genMu.Unlock()
	if ns.hasGen {
		ns.gen++
	}
}

// Set binds v to the slot of its kind under name.
func (ns *Namespace) Set(name string, v host.Value) error {
	if v == nil {
		return fmt.Errorf("memhost: bind %s::%s: nil value", ns.name, name)
	}
	if err := ns.host.put(ns.name, name, v); err != nil {
		return err
	}
	ns.touch(v.Kind())
	return nil
}

// Get returns the slot of the given kind under name.
func (ns *Namespace) Get(name string, kind host.Kind) (host.Value, bool) {
	return ns.host.get(ns.name, name, kind)
}

// Delete removes one slot.
func (ns *Namespace) Delete(name string, kind host.Kind) (bool, error) {
	deleted, err := ns.host.delete(ns.name, name, kind)
	if err != nil {
		return false, fmt.Errorf("memhost: unbind %s::%s: %w", ns.name, name, err)
	}
	if deleted {
		ns.touch(kind)
	}
	return deleted, nil
}

// DefineSub creates a sub declared in this package and binds it under name.
func (ns *Namespace) DefineSub(name string, body func(args ...host.Value) (host.Value, error)) (*Sub, error) {
	sub := ns.host.NewSub(ns.name, name, body)
	if err := ns.Set(name, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SetISA replaces the package's parent list.
func (ns *Namespace) SetISA(parents ...string) error {
	items := make([]host.Value, len(parents))
	for i, p := range parents {
		items[i] = host.NewScalar(p)
	}
	if err := ns.Set(keys.KeyFor(keys.ISA).String(), host.NewArray(items...)); err != nil {
		return err
	}
	// the resolution order changed even though no sub slot did
	ns.touch(host.KindCallable)
	return nil
}

// ISA returns the package's parent list.
func (ns *Namespace) ISA() []string {
	v, ok := ns.Get(keys.KeyFor(keys.ISA).String(), host.KindArray)
	if !ok {
		return nil
	}
	return v.(*host.Array).Strings()
}
