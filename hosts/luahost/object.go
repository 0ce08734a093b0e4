package luahost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/on-the-ground/mopaccel/mop/host"
)

var (
	_ host.AttributeStore = (*Object)(nil)
	_ host.MethodResolver = (*Object)(nil)
	_ host.MethodResolver = (*ClassRef)(nil)
)

// Object is a blessed Lua table.
type Object struct {
	host  *Host
	tbl   *lua.LTable
	class string
}

// NewObject creates an empty table blessed into class.
func (h *Host) NewObject(class string) *Object {
	tbl := h.L.NewTable()
	h.bless(tbl, class)
	return &Object{host: h, tbl: tbl, class: class}
}

func (h *Host) bless(tbl *lua.LTable, class string) {
	mt := h.L.NewTable()
	mt.RawSetString(classField, lua.LString(class))
	mt.RawSetString("__index", h.L.NewFunction(func(L *lua.LState) int {
		c, ok := h.ResolveMethod(class, L.CheckString(2))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(h.toLua(c))
		return 1
	}))
	h.L.SetMetatable(tbl, mt)
}

func classOf(L *lua.LState, tbl *lua.LTable) (string, bool) {
	mt, ok := L.GetMetatable(tbl).(*lua.LTable)
	if !ok {
		return "", false
	}
	class, ok := mt.RawGetString(classField).(lua.LString)
	return string(class), ok
}

// Objects are references, so they count as scalars.
func (o *Object) Kind() host.Kind    { return host.KindScalar }
func (o *Object) Class() string      { return o.class }
func (o *Object) String() string     { return o.class + "=table" }
func (o *Object) Table() *lua.LTable { return o.tbl }

// FetchAttr reads a raw field. Lua interns its strings, so the hash is not
// consulted.
func (o *Object) FetchAttr(name string, _ uint64) (host.Value, bool) {
	v := o.tbl.RawGetString(name)
	if v == lua.LNil {
		return nil, false
	}
	return o.host.fromLua(v), true
}

// SetAttr stores v as a raw field.
func (o *Object) SetAttr(name string, v host.Value) {
	o.tbl.RawSetString(name, o.host.toLua(v))
}

func (o *Object) ResolveMethod(name string) (host.Callable, bool) {
	return o.host.ResolveMethod(o.class, name)
}

// ClassRef is a bare class name used as an invocant.
type ClassRef struct {
	host *Host
	name string
}

// Class returns an invocant for class-method calls on name.
func (h *Host) Class(name string) *ClassRef {
	return &ClassRef{host: h, name: name}
}

func (c *ClassRef) Kind() host.Kind { return host.KindScalar }
func (c *ClassRef) String() string  { return c.name }

func (c *ClassRef) ResolveMethod(name string) (host.Callable, bool) {
	return c.host.ResolveMethod(c.name, name)
}
