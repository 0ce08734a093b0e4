// Package memhost is an in-memory host object system for the acceleration
// core. Packages are sets of symbol slots kept in a go-memdb table (one slot
// per name and kind, like a symbol glob), subs remember where they were
// declared, and objects store attributes in buckets keyed by keys.Hash so the
// prehashed lookups skip hashing entirely.
//
// Range deliberately shuffles its output so callers cannot grow a dependency
// on enumeration order.
package memhost
