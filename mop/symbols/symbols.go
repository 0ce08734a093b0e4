package symbols

import (
	"errors"
	"maps"
	"slices"

	"github.com/on-the-ground/mopaccel/mop/host"
)

var ErrUnknownFilter = errors.New("unknown type filter")

// Visitor receives one matching entry. Returning false stops the walk.
// name is only valid for the duration of the call.
type Visitor func(name string, v host.Value) bool

// ForEach calls visit for every entry of ns that passes filter.
// Order is whatever the host yields and must not be relied upon.
// A nil namespace is treated as empty.
func ForEach(ns host.Namespace, filter TypeFilter, visit Visitor) {
	if ns == nil || visit == nil {
		return
	}
	ns.Range(func(name string, v host.Value) bool {
		if !filter.Matches(v) {
			return true
		}
		return visit(name, v)
	})
}

// ForEachWith is ForEach with an explicit user context passed through to
// every visit.
func ForEachWith[C any](
	ns host.Namespace,
	filter TypeFilter,
	visit func(name string, v host.Value, ctx C) bool,
	ctx C,
) {
	if visit == nil {
		return
	}
	ForEach(ns, filter, func(name string, v host.Value) bool {
		return visit(name, v, ctx)
	})
}

// CollectAll returns a fresh map of every entry of ns that passes filter.
// When the host yields a name twice the last value wins.
func CollectAll(ns host.Namespace, filter TypeFilter) map[string]host.Value {
	out := make(map[string]host.Value)
	ForEachWith(ns, filter, collect, out)
	return out
}

func collect(name string, v host.Value, into map[string]host.Value) bool {
	into[name] = v
	return true
}

// Names returns the distinct names CollectAll would return, sorted.
func Names(ns host.Namespace, filter TypeFilter) []string {
	return slices.Sorted(maps.Keys(CollectAll(ns, filter)))
}

// Find returns the first entry the host yields that passes filter and pred.
func Find(ns host.Namespace, filter TypeFilter, pred func(name string, v host.Value) bool) (name string, v host.Value, ok bool) {
	ForEach(ns, filter, func(n string, val host.Value) bool {
		if pred(n, val) {
			name, v, ok = n, val, true
			return false
		}
		return true
	})
	return
}
