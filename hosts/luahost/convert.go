package luahost

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/on-the-ground/mopaccel/mop/host"
)

func (h *Host) fromLua(v lua.LValue) host.Value {
	return h.fromLuaVisited(v, make(map[*lua.LTable]struct{}))
}

func (h *Host) fromLuaVisited(v lua.LValue, visited map[*lua.LTable]struct{}) host.Value {
	switch v := v.(type) {
	case *lua.LNilType:
		return host.Undef
	case lua.LBool:
		return host.NewScalar(bool(v))
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return host.NewScalar(int64(f))
		}
		return host.NewScalar(f)
	case lua.LString:
		return host.NewScalar(string(v))
	case *lua.LFunction:
		return &Function{host: h, fn: v}
	case *lua.LUserData:
		if hv, ok := v.Value.(host.Value); ok {
			return hv
		}
		return host.NewScalar(v.Value)
	case *lua.LTable:
		if class, ok := classOf(h.L, v); ok {
			return &Object{host: h, tbl: v, class: class}
		}
		if _, seen := visited[v]; seen {
			return host.Undef
		}
		visited[v] = struct{}{}
		defer delete(visited, v)
		return h.tableValue(v, visited)
	default:
		return host.NewScalar(v.String())
	}
}

// tableValue maps a sequence to an Array and anything else to a Mapping.
func (h *Host) tableValue(tbl *lua.LTable, visited map[*lua.LTable]struct{}) host.Value {
	if n := tbl.Len(); n > 0 {
		items := make([]host.Value, 0, n)
		for i := 1; i <= n; i++ {
			items = append(items, h.fromLuaVisited(tbl.RawGetInt(i), visited))
		}
		return host.NewArray(items...)
	}
	entries := make(map[string]host.Value)
	tbl.ForEach(func(k, v lua.LValue) {
		entries[k.String()] = h.fromLuaVisited(v, visited)
	})
	return host.NewMapping(entries)
}

func (h *Host) toLua(v host.Value) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case host.Scalar:
		return h.scalarToLua(v.V)
	case *host.Array:
		tbl := h.L.NewTable()
		for _, it := range v.Items {
			tbl.Append(h.toLua(it))
		}
		return tbl
	case *host.Mapping:
		tbl := h.L.NewTable()
		for k, it := range v.Entries {
			tbl.RawSetString(k, h.toLua(it))
		}
		return tbl
	case *Object:
		return v.tbl
	case *Function:
		return v.fn
	case host.Callable:
		return h.wrapNative(v)
	default:
		if host.IsUndef(v) {
			return lua.LNil
		}
		ud := h.L.NewUserData()
		ud.Value = v
		return ud
	}
}

func (h *Host) scalarToLua(v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case int:
		return lua.LNumber(v)
	case int32:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case uint:
		return lua.LNumber(v)
	case uint32:
		return lua.LNumber(v)
	case uint64:
		return lua.LNumber(v)
	case float32:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case host.Value:
		return h.toLua(v)
	default:
		ud := h.L.NewUserData()
		ud.Value = v
		return ud
	}
}
