// Package luahost runs the acceleration core against a gopher-lua state.
//
// Packages are tables under the global "packages" table, subs declared with
// sub(pkg, name, fn) remember their declaring package, and bless(tbl, class)
// turns a table into an instance whose methods resolve through the ISA arrays
// of its class packages.
package luahost
