// Package nsutil answers two questions upper caches ask about a namespace:
// has it changed, and where was this callable declared.
package nsutil

import "github.com/on-the-ground/mopaccel/mop/host"

// CacheGenerationOf reports the namespace's cache-invalidation marker.
// Namespaces that carry none report (0, false).
func CacheGenerationOf(ns host.Namespace) (uint64, bool) {
	g, ok := ns.(host.Generational)
	if !ok {
		return 0, false
	}
	gen, ok := g.Generation()
	if !ok {
		return 0, false
	}
	return gen, true
}

// Location is where a callable was declared.
type Location struct {
	Namespace string
	Name      string
}

func (l Location) String() string {
	return l.Namespace + "::" + l.Name
}

// DeclaringLocationOf returns the namespace and entry name v was declared
// under. Anonymous callables, callables the host cannot introspect and
// non-callables report false.
//
// The answer is whatever the host recorded at declaration time: a callable
// later bound under another name still reports its original location.
func DeclaringLocationOf(v host.Value) (Location, bool) {
	if v == nil || v.Kind() != host.KindCallable {
		return Location{}, false
	}
	named, ok := v.(host.Named)
	if !ok {
		return Location{}, false
	}
	pkg, name, ok := named.Origin()
	if !ok || pkg == "" || name == "" || name == host.AnonName {
		return Location{}, false
	}
	return Location{Namespace: pkg, Name: name}, true
}
