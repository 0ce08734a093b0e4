package luahost

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/on-the-ground/mopaccel/mop/host"
)

var (
	_ host.Callable = (*Function)(nil)
	_ host.Named    = (*Function)(nil)
)

// Function is a Lua function seen from Go.
type Function struct {
	host *Host
	fn   *lua.LFunction
}

func (f *Function) Kind() host.Kind { return host.KindCallable }

// LFunction returns the wrapped Lua function.
func (f *Function) LFunction() *lua.LFunction { return f.fn }

// Call runs the function in protected mode and returns its first result.
func (f *Function) Call(args ...host.Value) (host.Value, error) {
	if f.host.closed {
		return nil, ErrClosed
	}
	L := f.host.L
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = f.host.toLua(a)
	}
	err := f.host.doWithRecovery(func() error {
		return L.CallByParam(lua.P{Fn: f.fn, NRet: 1, Protect: true}, largs...)
	})
	if err != nil {
		return nil, fmt.Errorf("luahost: call: %w", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return f.host.fromLua(ret), nil
}

// Origin reports where the function was declared through sub() or
// InstallNative. Functions assigned directly into a package table have no
// recorded origin.
func (f *Function) Origin() (pkg, name string, ok bool) {
	o, ok := f.host.origins[f.fn]
	if !ok {
		return "", "", false
	}
	return o.pkg, o.name, true
}
