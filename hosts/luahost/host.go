package luahost

import (
	"errors"
	"fmt"
	"slices"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/on-the-ground/mopaccel/mop/config"
	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/keys"
	"github.com/on-the-ground/mopaccel/mop/log"
)

var _ host.Installer = (*Host)(nil)

const (
	packagesGlobal = "packages"
	classField     = "__class"
	universal      = "UNIVERSAL"
)

var ErrClosed = errors.New("luahost: state closed")

type origin struct {
	pkg, name string
}

// Host exposes a Lua state as a host object system. Packages are tables in
// the global "packages" table, keyed by their qualified name; objects are
// tables whose metatable carries a __class field.
//
// The table Lua sees for a package is an empty proxy: reads fall through to
// the backing table and writes go through __newindex, so a function stored
// from Lua bumps the package's marker the same way sub() does. Lua's pairs
// does not see through the proxy.
//
// IMPORTANT: gopher-lua's LState is not goroutine-safe. A Host must be used
// from one goroutine at a time.
type Host struct {
	L      *lua.LState
	logger *zap.Logger

	packages *lua.LTable
	backing  map[string]*lua.LTable
	origins  map[*lua.LFunction]origin
	gens     map[string]uint64
	closed   bool
}

// Option configures a Host.
type Option func(*Host)

// WithLogger logs package creation, declarations and installs at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) {
		h.logger = log.OrNop(logger)
	}
}

// New creates a Lua state sized by cfg and installs the package helpers:
//
//	package_table(name)        -- returns (and creates) the package table
//	sub(pkg, name, fn)         -- declares fn as pkg::name
//	bless(tbl, class)          -- makes tbl an instance of class
//	set_generation(pkg, n)     -- sets pkg's cache marker
func New(cfg config.LuaHostConfig, opts ...Option) *Host {
	keys.Initialize()

	L := lua.NewState(lua.Options{
		CallStackSize: cfg.CallStackSize,
		SkipOpenLibs:  cfg.SkipOpenLibs,
	})
	if cfg.SkipOpenLibs {
		lua.OpenBase(L)
		lua.OpenTable(L)
		lua.OpenString(L)
		lua.OpenMath(L)
	}
	h := &Host{
		L:        L,
		logger:   zap.NewNop(),
		packages: L.NewTable(),
		backing:  make(map[string]*lua.LTable),
		origins:  make(map[*lua.LFunction]origin),
		gens:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(h)
	}

	L.SetGlobal(packagesGlobal, h.packages)
	L.SetGlobal("package_table", L.NewFunction(h.luaPackageTable))
	L.SetGlobal("sub", L.NewFunction(h.luaSub))
	L.SetGlobal("bless", L.NewFunction(h.luaBless))
	L.SetGlobal("set_generation", L.NewFunction(h.luaSetGeneration))
	return h
}

// Close releases the Lua state.
func (h *Host) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.L.Close()
}

// DoString runs a chunk of Lua.
func (h *Host) DoString(src string) error {
	if h.closed {
		return ErrClosed
	}
	return h.doWithRecovery(func() error { return h.L.DoString(src) })
}

// DoFile runs a Lua file.
func (h *Host) DoFile(path string) error {
	if h.closed {
		return ErrClosed
	}
	return h.doWithRecovery(func() error { return h.L.DoFile(path) })
}

func (h *Host) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Global returns a Lua global converted to a host value.
func (h *Host) Global(name string) host.Value {
	return h.fromLua(h.L.GetGlobal(name))
}

// Namespace returns the named package, creating its table on first use.
func (h *Host) Namespace(name string) *Namespace {
	return &Namespace{host: h, name: name, tbl: h.packageTable(name)}
}

// LookupNamespace returns the named package only if it was created through
// package_table, sub or the Go API.
func (h *Host) LookupNamespace(name string) (*Namespace, bool) {
	tbl, ok := h.backing[name]
	if !ok {
		return nil, false
	}
	return &Namespace{host: h, name: name, tbl: tbl}, true
}

// Namespaces returns the names of every package, sorted.
func (h *Host) Namespaces() []string {
	out := make([]string, 0, len(h.backing))
	for name := range h.backing {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// packageTable returns the backing table of name, creating it and its proxy
// on first use.
func (h *Host) packageTable(name string) *lua.LTable {
	if tbl, ok := h.backing[name]; ok {
		return tbl
	}
	tbl := h.L.NewTable()
	h.backing[name] = tbl

	proxy := h.L.NewTable()
	mt := h.L.NewTable()
	mt.RawSetString("__index", tbl)
	mt.RawSetString("__newindex", h.L.NewFunction(func(L *lua.LState) int {
		k, v := L.Get(2), L.Get(3)
		old := tbl.RawGet(k)
		tbl.RawSet(k, v)
		if isFunction(v) || isFunction(old) {
			h.bump(name)
		}
		return 0
	}))
	h.L.SetMetatable(proxy, mt)
	h.packages.RawSetString(name, proxy)

	h.logger.Debug("package created", zap.String("namespace", name))
	return tbl
}

func isFunction(v lua.LValue) bool {
	_, ok := v.(*lua.LFunction)
	return ok
}

// Declare binds fn as pkg::name and records that location as its origin.
func (h *Host) Declare(pkg, name string, fn *lua.LFunction) {
	h.origins[fn] = origin{pkg: pkg, name: name}
	h.packageTable(pkg).RawSetString(name, fn)
	h.bump(pkg)
	h.logger.Debug("sub declared", zap.String("namespace", pkg), zap.String("name", name))
}

// InstallNative exposes a Go callable to Lua as fqName.
func (h *Host) InstallNative(fqName string, fn host.Callable) error {
	if fn == nil {
		return fmt.Errorf("luahost: install %s: nil callable", fqName)
	}
	if h.closed {
		return ErrClosed
	}
	pkg, name := host.SplitQualified(fqName)
	if name == "" {
		return fmt.Errorf("luahost: install %q: empty sub name", fqName)
	}
	h.Declare(pkg, name, h.wrapNative(fn))
	return nil
}

func (h *Host) wrapNative(fn host.Callable) *lua.LFunction {
	return h.L.NewFunction(func(L *lua.LState) int {
		args := make([]host.Value, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, h.fromLua(L.Get(i)))
		}
		v, err := fn.Call(args...)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(h.toLua(v))
		return 1
	})
}

// SetGeneration sets pkg's cache marker. Once set, every declaration in pkg
// increments it.
func (h *Host) SetGeneration(pkg string, gen uint64) {
	h.gens[pkg] = gen
}

func (h *Host) bump(pkg string) {
	if gen, ok := h.gens[pkg]; ok {
		h.gens[pkg] = gen + 1
	}
}

// ResolveMethod looks method up in class and then depth-first through the
// ISA lists of its parents, finishing with UNIVERSAL.
func (h *Host) ResolveMethod(class, method string) (host.Callable, bool) {
	seen := make(map[string]struct{})
	if c, ok := h.resolveIn(class, method, seen); ok {
		return c, true
	}
	if _, done := seen[universal]; !done {
		return h.resolveIn(universal, method, seen)
	}
	return nil, false
}

func (h *Host) resolveIn(class, method string, seen map[string]struct{}) (host.Callable, bool) {
	if _, ok := seen[class]; ok {
		return nil, false
	}
	seen[class] = struct{}{}

	ns, ok := h.LookupNamespace(class)
	if !ok {
		return nil, false
	}
	if fn, ok := ns.tbl.RawGetString(method).(*lua.LFunction); ok {
		return &Function{host: h, fn: fn}, true
	}
	for _, parent := range ns.ISA() {
		if c, ok := h.resolveIn(parent, method, seen); ok {
			return c, true
		}
	}
	return nil, false
}

func (h *Host) luaPackageTable(L *lua.LState) int {
	name := L.CheckString(1)
	h.packageTable(name)
	L.Push(h.packages.RawGetString(name))
	return 1
}

func (h *Host) luaSub(L *lua.LState) int {
	pkg := L.CheckString(1)
	name := L.CheckString(2)
	fn := L.CheckFunction(3)
	h.Declare(pkg, name, fn)
	L.Push(fn)
	return 1
}

func (h *Host) luaBless(L *lua.LState) int {
	tbl := L.CheckTable(1)
	class := L.CheckString(2)
	h.bless(tbl, class)
	L.Push(tbl)
	return 1
}

func (h *Host) luaSetGeneration(L *lua.LState) int {
	h.SetGeneration(L.CheckString(1), uint64(L.CheckInt64(2)))
	return 0
}
