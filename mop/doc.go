// Package mop is a native acceleration layer for a metaobject protocol.
//
// It speeds up three hot paths of the layer above it: reading one attribute
// of a metaobject, listing one kind of entry in a namespace, and calling a
// zero-argument protocol hook. It does not model classes, attributes or
// method resolution itself; those belong to the host, described by the
// interfaces in package host.
//
// # Components
//
//   - keys: the closed set of well-known names, interned and prehashed once.
//   - symbols: type-filtered namespace enumeration (ForEach, CollectAll).
//   - reader: one shared accessor body serving any number of installed
//     simple readers, each tagged with a key.
//   - nsutil: generation markers and declaring-location lookup.
//   - invoke: resolve-and-call for zero-argument hooks.
//   - methodmap: per-namespace method tables cached by generation.
//
// Everything runs synchronously on the caller's goroutine. The only shared
// state is the key table, which is read-only after Init.
//
// Example:
//
//	h, _ := memhost.New()
//	rt, err := mop.Boot(config.Default(), h, logger)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	methods := rt.MethodMaps.Methods(h.Namespace("Foo"))
//	meta, err := invoke.Hook(obj, keys.AssociatedMetaclass)
package mop
