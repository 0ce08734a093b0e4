package reader_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/mopaccel/hosts/memhost"
	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/keys"
	"github.com/on-the-ground/mopaccel/mop/log"
	"github.com/on-the-ground/mopaccel/mop/reader"
)

func newHost(t *testing.T) *memhost.Host {
	t.Helper()
	h, err := memhost.New()
	require.NoError(t, err)
	return h
}

func TestSimpleReader_ReadsStoredAttribute(t *testing.T) {
	keys.Initialize()
	h := newHost(t)
	table := reader.NewTable(reader.WithLogger(log.NewTestLogger()))

	nameReader, err := table.InstallSimpleReader("Class::MOP::Method::name", keys.Name)
	require.NoError(t, err)
	bodyReader, err := table.InstallSimpleReader("Class::MOP::Method::body", keys.Body)
	require.NoError(t, err)

	body := h.NewAnonSub("Foo", nil)
	method := h.NewObject("Class::MOP::Method")
	method.SetAttr("name", host.NewScalar("bar"))
	method.SetAttr("body", body)

	v, err := nameReader.Call(method)
	require.NoError(t, err)
	assert.Equal(t, "bar", v.(host.Scalar).V)

	v, err = bodyReader.Call(method)
	require.NoError(t, err)
	assert.Same(t, body, v)

	assert.Equal(t, keys.Name, nameReader.Key())
	assert.Equal(t, keys.Body, bodyReader.Key())
}

func TestSimpleReader_AbsentAttributeIsUndef(t *testing.T) {
	keys.Initialize()
	h := newHost(t)
	table := reader.NewTable()

	acc, err := table.InstallSimpleReader("Class::MOP::Package::name", keys.Package)
	require.NoError(t, err)

	v, err := acc.Call(h.NewObject("Class::MOP::Package"))
	require.NoError(t, err)
	assert.True(t, host.IsUndef(v))
	assert.Equal(t, host.Undef, v)
}

func TestSimpleReader_WrongArgCount(t *testing.T) {
	keys.Initialize()
	h := newHost(t)
	table := reader.NewTable()
	acc, err := table.InstallSimpleReader("Foo::name", keys.Name)
	require.NoError(t, err)

	_, err = acc.Call()
	require.Error(t, err)
	assert.True(t, errors.Is(err, reader.ErrWrongArgCount))
	var usage *reader.UsageError
	require.True(t, errors.As(err, &usage))
	assert.Equal(t, "Foo::name", usage.Accessor)
	assert.Equal(t, 0, usage.Got)

	obj := h.NewObject("Foo")
	_, err = acc.Call(obj, obj)
	assert.True(t, errors.Is(err, reader.ErrWrongArgCount))
}

func TestSimpleReader_ClassInvocant(t *testing.T) {
	keys.Initialize()
	h := newHost(t)
	table := reader.NewTable()
	acc, err := table.InstallSimpleReader("Foo::name", keys.Name)
	require.NoError(t, err)

	_, err = acc.Call(h.Class("Foo"))
	assert.True(t, errors.Is(err, reader.ErrNotInstance))
	assert.Contains(t, err.Error(), "can't call Foo::name as a class method")

	_, err = acc.Call(host.NewScalar("Foo"))
	assert.True(t, errors.Is(err, reader.ErrNotInstance))
}

func TestSimpleReader_OneImplementationManyKeys(t *testing.T) {
	keys.Initialize()
	h := newHost(t)
	table := reader.NewTable()

	obj := h.NewObject("Everything")
	for _, k := range keys.All() {
		obj.SetAttr(k.String(), host.NewScalar("value of "+k.String()))
	}
	for _, k := range keys.All() {
		acc, err := table.InstallSimpleReader("Everything::"+k.String(), k)
		require.NoError(t, err)
		v, err := acc.Call(obj)
		require.NoError(t, err)
		assert.Equal(t, "value of "+k.String(), v.(host.Scalar).V)
	}
	assert.Equal(t, len(keys.All()), table.Len())
}

func TestTable_DuplicateInstall(t *testing.T) {
	keys.Initialize()
	table := reader.NewTable()

	first, err := table.InstallSimpleReader("Foo::name", keys.Name)
	require.NoError(t, err)
	_, err = table.InstallSimpleReader("Foo::name", keys.Body)
	assert.True(t, errors.Is(err, reader.ErrAlreadyInstalled))

	got, ok := table.Lookup("Foo::name")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, keys.Name, got.Key(), "a failed reinstall must not retag the accessor")

	_, ok = table.Lookup("Foo::body")
	assert.False(t, ok)
}

func TestTable_InstallSimpleReadersCombinesErrors(t *testing.T) {
	keys.Initialize()
	table := reader.NewTable()
	_, err := table.InstallSimpleReader("A::name", keys.Name)
	require.NoError(t, err)

	err = table.InstallSimpleReaders(map[string]keys.Key{
		"A::name": keys.Name,
		"B::name": keys.Name,
		"C::body": keys.Body,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, reader.ErrAlreadyInstalled))
	assert.Equal(t, []string{"A::name", "B::name", "C::body"}, table.Names())
}

func TestTable_UnknownKeyPanics(t *testing.T) {
	keys.Initialize()
	table := reader.NewTable()
	assert.Panics(t, func() {
		_, _ = table.InstallSimpleReader("Foo::bad", keys.Key(99))
	})
	assert.Zero(t, table.Len())
}

func TestTable_PublishesIntoHost(t *testing.T) {
	keys.Initialize()
	h := newHost(t)
	table := reader.NewTable(reader.WithInstaller(h))

	require.NoError(t, table.InstallSimpleReaders(reader.StandardReaders()))
	assert.Len(t, table.Names(), len(reader.StandardReaders()))

	method := h.NewObject("Class::MOP::Method")
	method.SetAttr("package_name", host.NewScalar("Foo"))

	c, ok := h.ResolveMethod("Class::MOP::Method", "package_name")
	require.True(t, ok)
	v, err := c.Call(method)
	require.NoError(t, err)
	assert.Equal(t, "Foo", v.(host.Scalar).V)
}

func TestReadAs(t *testing.T) {
	keys.Initialize()
	h := newHost(t)
	table := reader.NewTable()
	acc, err := table.InstallSimpleReader("Foo::methods", keys.Methods)
	require.NoError(t, err)

	obj := h.NewObject("Foo")
	obj.SetAttr("methods", host.NewMapping(nil))

	m, err := reader.ReadAs[*host.Mapping](acc, obj)
	require.NoError(t, err)
	assert.Empty(t, m.Entries)

	_, err = reader.ReadAs[*host.Array](acc, obj)
	assert.Error(t, err)

	_, err = reader.ReadAs[*host.Mapping](acc, h.Class("Foo"))
	assert.True(t, errors.Is(err, reader.ErrNotInstance))
}
