package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Fixture(t *testing.T) {
	fixture := writeFile(t, "packages.json", `{"packages": {
		"Base": {"subs": {"hello": 1}},
		"Foo": {
			"generation": 3,
			"isa": ["Base"],
			"scalars": {"VERSION": "1.0"},
			"subs": {"bar": 2},
			"imports": {"hello": "Base::hello"}
		}
	}}`)
	cfg := writeFile(t, "mop.yaml", "mop:\n  log:\n    level: error\n  method_map:\n    enabled: true\n")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-fixture", fixture, "-package", "Foo", "-config", cfg}, &out))

	got := out.String()
	assert.Contains(t, got, "package Foo\n")
	assert.Contains(t, got, "generation 3\n")
	assert.Contains(t, got, "VERSION")
	assert.Contains(t, got, "Foo::bar")
	assert.NotContains(t, got, "Base::hello", "imported subs are not methods")
}

func TestRun_Lua(t *testing.T) {
	script := writeFile(t, "classes.lua", `
		sub("Point", "x", function(self) return self.x end)
		package_table("Point").ORIGIN = {0, 0}
	`)
	cfg := writeFile(t, "mop.yaml", "mop:\n  log:\n    level: error\n")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-lua", script, "-package", "Point", "-filter", "CODE", "-config", cfg}, &out))

	got := out.String()
	assert.Contains(t, got, "package Point\n")
	assert.Contains(t, got, "generation none\n")
	assert.Contains(t, got, "symbols (callable)")
	assert.Contains(t, got, "Point::x")
	assert.NotContains(t, got, "ORIGIN")
}

func TestRun_UsageErrors(t *testing.T) {
	var out bytes.Buffer

	err := run(nil, &out)
	assert.True(t, errors.Is(err, errUsage))

	err = run([]string{"-lua", "a.lua", "-fixture", "b.json"}, &out)
	assert.True(t, errors.Is(err, errUsage))

	err = run([]string{"-lua", "a.lua", "-filter", "GLOB"}, &out)
	assert.True(t, errors.Is(err, errUsage))

	err = run([]string{"-fixture", filepath.Join(t.TempDir(), "missing.json")}, &out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errUsage))
}

func TestRun_UnknownPackage(t *testing.T) {
	fixture := writeFile(t, "packages.json", `{"packages": {"Foo": {}}}`)
	cfg := writeFile(t, "mop.yaml", "mop:\n  log:\n    level: error\n")

	var out bytes.Buffer
	err := run([]string{"-fixture", fixture, "-package", "Bar", "-config", cfg}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package Bar not found")
}
