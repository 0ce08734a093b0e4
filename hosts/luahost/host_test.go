package luahost_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/mopaccel/hosts/luahost"
	"github.com/on-the-ground/mopaccel/mop/config"
	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/invoke"
	"github.com/on-the-ground/mopaccel/mop/keys"
	"github.com/on-the-ground/mopaccel/mop/log"
	"github.com/on-the-ground/mopaccel/mop/methodmap"
	"github.com/on-the-ground/mopaccel/mop/nsutil"
	"github.com/on-the-ground/mopaccel/mop/reader"
	"github.com/on-the-ground/mopaccel/mop/symbols"
)

const script = `
package_table("Base")
sub("Base", "hello", function(self) return "from base" end)

local foo = package_table("Foo")
foo.ISA = {"Base"}
foo.VERSION = "1.0"
foo.EXPORT = {"bar", "baz"}
foo.CONFIG = {k = "v"}
sub("Foo", "bar", function(self) return 42 end)
foo.first = packages["Base"].hello
set_generation("Foo", 7)

obj = bless({name = "widget"}, "Foo")
`

func newHost(t *testing.T) *luahost.Host {
	t.Helper()
	h := luahost.New(config.Default().LuaHost, luahost.WithLogger(log.NewTestLogger()))
	t.Cleanup(h.Close)
	require.NoError(t, h.DoString(script))
	return h
}

func TestHost_PackagesAsNamespaces(t *testing.T) {
	h := newHost(t)

	assert.Equal(t, []string{"Base", "Foo"}, h.Namespaces())

	foo, ok := h.LookupNamespace("Foo")
	require.True(t, ok)
	assert.Equal(t, []string{"Base"}, foo.ISA())

	assert.Equal(t, []string{"bar", "first"}, symbols.Names(foo, symbols.FilterCallable))
	assert.Equal(t, []string{"EXPORT", "ISA"}, symbols.Names(foo, symbols.FilterArray))
	assert.Equal(t, []string{"CONFIG"}, symbols.Names(foo, symbols.FilterMapping))
	assert.Equal(t, []string{"VERSION"}, symbols.Names(foo, symbols.FilterScalar))
	assert.Empty(t, symbols.Names(foo, symbols.FilterIO))

	_, ok = h.LookupNamespace("Missing")
	assert.False(t, ok)
}

func TestHost_GenerationBumpsOnDeclare(t *testing.T) {
	h := newHost(t)
	foo, _ := h.LookupNamespace("Foo")

	gen, ok := nsutil.CacheGenerationOf(foo)
	require.True(t, ok)
	assert.Equal(t, uint64(7), gen)

	require.NoError(t, h.DoString(`sub("Foo", "added", function() end)`))
	gen, _ = nsutil.CacheGenerationOf(foo)
	assert.Equal(t, uint64(8), gen)

	base, _ := h.LookupNamespace("Base")
	_, ok = nsutil.CacheGenerationOf(base)
	assert.False(t, ok)
}

func TestHost_DeclaringLocation(t *testing.T) {
	h := newHost(t)
	foo, _ := h.LookupNamespace("Foo")
	subs := symbols.CollectAll(foo, symbols.FilterCallable)

	loc, ok := nsutil.DeclaringLocationOf(subs["first"])
	require.True(t, ok)
	assert.Equal(t, "Base::hello", loc.String())

	loc, ok = nsutil.DeclaringLocationOf(subs["bar"])
	require.True(t, ok)
	assert.Equal(t, "Foo::bar", loc.String())

	require.NoError(t, h.DoString(`package_table("Foo").raw = function() end`))
	subs = symbols.CollectAll(foo, symbols.FilterCallable)
	_, ok = nsutil.DeclaringLocationOf(subs["raw"])
	assert.False(t, ok, "functions assigned without sub() have no origin")
}

func TestHost_MethodMapSkipsImports(t *testing.T) {
	h := newHost(t)
	foo, _ := h.LookupNamespace("Foo")

	methods := methodmap.Build(foo)
	assert.Contains(t, methods, "bar")
	assert.NotContains(t, methods, "first")
}

func TestHost_TableWritesInvalidateMethodMap(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.DoString(`
		set_generation("Gen", 1)
		sub("Gen", "a", function() return 1 end)
	`))
	ns, ok := h.LookupNamespace("Gen")
	require.True(t, ok)

	c, err := methodmap.New(config.Default().MethodMap)
	require.NoError(t, err)
	defer c.Close()

	assert.Len(t, c.Methods(ns), 1)
	gen, _ := nsutil.CacheGenerationOf(ns)

	require.NoError(t, h.DoString(`package_table("Gen").b = function() return 2 end`))
	bumped, _ := nsutil.CacheGenerationOf(ns)
	assert.Greater(t, bumped, gen)

	methods := c.Methods(ns)
	assert.Len(t, methods, 2)
	assert.Contains(t, methods, "b")
	assert.Equal(t, uint64(2), c.Rebuilds())

	require.NoError(t, h.DoString(`packages["Gen"].VERSION = "2"`))
	same, _ := nsutil.CacheGenerationOf(ns)
	assert.Equal(t, bumped, same, "non-function writes leave the marker alone")

	require.NoError(t, h.DoString(`packages["Gen"].b = nil`))
	assert.NotContains(t, c.Methods(ns), "b")
	assert.Equal(t, uint64(3), c.Rebuilds())

	require.NoError(t, h.DoString(`assert(packages["Gen"].a() == 1)`))
}

func TestHost_ObjectsAndInvoke(t *testing.T) {
	h := newHost(t)
	keys.Initialize()

	obj, ok := h.Global("obj").(*luahost.Object)
	require.True(t, ok)
	assert.Equal(t, "Foo", obj.Class())

	v, ok := obj.FetchAttr(keys.KeyFor(keys.Name).String(), keys.HashFor(keys.Name))
	require.True(t, ok)
	assert.Equal(t, "widget", v.(host.Scalar).V)

	v, err := invoke.NoArgs(obj, "hello")
	require.NoError(t, err)
	assert.Equal(t, "from base", v.(host.Scalar).V)

	v, err = invoke.NoArgs(h.Class("Foo"), "bar")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.(host.Scalar).V)

	_, err = invoke.NoArgs(obj, "nope")
	assert.True(t, errors.Is(err, invoke.ErrMethodNotFound))
}

func TestHost_LuaErrorsSurface(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.DoString(`sub("Foo", "boom", function() error("kaboom") end)`))

	_, err := invoke.NoArgs(h.Class("Foo"), "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")

	assert.Error(t, h.DoString(`this is not lua`))
}

func TestHost_InstalledReadersCallableFromLua(t *testing.T) {
	h := newHost(t)
	keys.Initialize()

	table := reader.NewTable(reader.WithInstaller(h))
	_, err := table.InstallSimpleReader("Meta::package_name", keys.PackageName)
	require.NoError(t, err)

	require.NoError(t, h.DoString(`
		local m = bless({package_name = "Foo"}, "Meta")
		result = packages["Meta"].package_name(m)
		missing = packages["Meta"].package_name(bless({}, "Meta"))
	`))
	assert.Equal(t, "Foo", h.Global("result").(host.Scalar).V)
	assert.True(t, host.IsUndef(h.Global("missing")))

	err = h.DoString(`packages["Meta"].package_name()`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package_name")

	meta, _ := h.LookupNamespace("Meta")
	loc, ok := nsutil.DeclaringLocationOf(symbols.CollectAll(meta, symbols.FilterCallable)["package_name"])
	require.True(t, ok)
	assert.Equal(t, "Meta::package_name", loc.String())
}

func TestHost_Close(t *testing.T) {
	h := luahost.New(config.Default().LuaHost)
	h.Close()
	h.Close()
	assert.True(t, errors.Is(h.DoString(`x = 1`), luahost.ErrClosed))
	assert.True(t, errors.Is(h.InstallNative("A::b", host.Func(nil)), luahost.ErrClosed))
}
