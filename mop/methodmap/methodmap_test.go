package methodmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/mopaccel/hosts/memhost"
	"github.com/on-the-ground/mopaccel/mop/config"
	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/log"
	"github.com/on-the-ground/mopaccel/mop/methodmap"
)

const classes = `{
  "packages": {
    "List::Util": {"subs": {"first": 1}},
    "Foo": {
      "generation": 1,
      "subs": {"new": "ctor", "bar": "bar"},
      "scalars": {"VERSION": "1.0"},
      "imports": {"first": "List::Util::first"}
    },
    "Untracked": {"subs": {"baz": "baz"}}
  }
}`

func newCache(t *testing.T) (*memhost.Host, *methodmap.Cache) {
	t.Helper()
	h, err := memhost.New()
	require.NoError(t, err)
	require.NoError(t, h.LoadJSON([]byte(classes)))

	c, err := methodmap.New(config.Default().MethodMap, methodmap.WithLogger(log.NewTestLogger()))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return h, c
}

func names(m map[string]host.Callable) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestBuild_SkipsImportedSubs(t *testing.T) {
	h, _ := newCache(t)
	foo, _ := h.LookupNamespace("Foo")

	assert.ElementsMatch(t, []string{"new", "bar"}, names(methodmap.Build(foo)))
	assert.Empty(t, methodmap.Build(nil))
}

func TestCache_NilNamespaceIsEmpty(t *testing.T) {
	_, c := newCache(t)

	var methods map[string]host.Callable
	assert.NotPanics(t, func() { methods = c.Methods(nil) })
	assert.NotNil(t, methods)
	assert.Empty(t, methods)
	assert.Zero(t, c.Rebuilds())
}

func TestBuild_KeepsAnonymousSubsBoundByName(t *testing.T) {
	h, _ := newCache(t)
	foo, _ := h.LookupNamespace("Foo")
	require.NoError(t, foo.Set("generated", h.NewAnonSub("Somewhere", nil)))

	assert.ElementsMatch(t, []string{"new", "bar", "generated"}, names(methodmap.Build(foo)))
}

func TestMethods_ReusedUntilGenerationMoves(t *testing.T) {
	h, c := newCache(t)
	foo, _ := h.LookupNamespace("Foo")

	first := c.Methods(foo)
	assert.ElementsMatch(t, []string{"new", "bar"}, names(first))
	assert.Equal(t, uint64(1), c.Rebuilds())

	again := c.Methods(foo)
	assert.ElementsMatch(t, []string{"new", "bar"}, names(again))
	assert.Equal(t, uint64(1), c.Rebuilds())

	_, err := foo.DefineSub("added", nil)
	require.NoError(t, err)

	updated := c.Methods(foo)
	assert.ElementsMatch(t, []string{"new", "bar", "added"}, names(updated))
	assert.Equal(t, uint64(2), c.Rebuilds())
}

func TestMethods_ResultBelongsToCaller(t *testing.T) {
	h, c := newCache(t)
	foo, _ := h.LookupNamespace("Foo")

	m := c.Methods(foo)
	delete(m, "new")

	assert.Contains(t, c.Methods(foo), "new")
}

func TestMethods_UntrackedNamespaceAlwaysRebuilds(t *testing.T) {
	h, c := newCache(t)
	untracked, _ := h.LookupNamespace("Untracked")

	c.Methods(untracked)
	c.Methods(untracked)
	assert.Equal(t, uint64(2), c.Rebuilds())
}

func TestMethods_Invalidate(t *testing.T) {
	h, c := newCache(t)
	foo, _ := h.LookupNamespace("Foo")

	c.Methods(foo)
	c.Invalidate("Foo")
	c.Methods(foo)
	assert.Equal(t, uint64(2), c.Rebuilds())
}

func TestNew_RejectsBadSizing(t *testing.T) {
	_, err := methodmap.New(config.MethodMapConfig{})
	assert.Error(t, err)
}
