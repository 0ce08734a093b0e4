package luahost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/on-the-ground/mopaccel/mop/host"
)

var (
	_ host.Namespace    = (*Namespace)(nil)
	_ host.Generational = (*Namespace)(nil)
)

// Namespace is a package table of a Host. Lua keeps one value per name, so
// Range never repeats a name.
type Namespace struct {
	host *Host
	name string
	tbl  *lua.LTable
}

func (ns *Namespace) Name() string { return ns.name }

// Table returns the underlying Lua table.
func (ns *Namespace) Table() *lua.LTable { return ns.tbl }

// Range yields every string-keyed field of the package table in Lua's
// traversal order.
func (ns *Namespace) Range(fn func(name string, v host.Value) bool) {
	for k, v := ns.tbl.Next(lua.LNil); k != lua.LNil; k, v = ns.tbl.Next(k) {
		name, ok := k.(lua.LString)
		if !ok {
			continue
		}
		if !fn(string(name), ns.host.fromLua(v)) {
			return
		}
	}
}

// Generation reports the package's cache marker, if one was set.
func (ns *Namespace) Generation() (uint64, bool) {
	gen, ok := ns.host.gens[ns.name]
	return gen, ok
}

// ISA returns the package's parent list, read from its ISA array.
func (ns *Namespace) ISA() []string {
	isa, ok := ns.tbl.RawGetString("ISA").(*lua.LTable)
	if !ok {
		return nil
	}
	out := make([]string, 0, isa.Len())
	for i := 1; i <= isa.Len(); i++ {
		if s, ok := isa.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}
