// Package keys owns the process-wide table of prehashed, interned keys.
//
// The key set is closed: attribute names the metaobject layer reads on every
// access (name, package, body, ...) and the names of the zero-argument
// protocol hooks it calls (associated_metaclass, wrap, ...). Both the string
// and its xxhash are computed once by Initialize; afterwards KeyFor and
// HashFor are plain array reads and safe for concurrent use.
//
//	keys.Initialize()
//	v, ok := obj.FetchAttr(keys.KeyFor(keys.Name).String(), keys.HashFor(keys.Name))
package keys
