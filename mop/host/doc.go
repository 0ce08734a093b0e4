// Package host describes the slice of a host object system that the
// acceleration core consumes: namespaces, callables, attribute storage and
// method resolution.
//
// The core never owns any of these values. A Namespace handed to an
// enumeration is borrowed for that call only, and names yielded by Range are
// not required to outlive the callback.
//
// Two adapters live in this repository: hosts/memhost (an in-memory host
// backed by go-memdb) and hosts/luahost (gopher-lua tables as packages).
package host
