package memhost

import (
	"github.com/google/uuid"

	"github.com/on-the-ground/mopaccel/mop/host"
)

var (
	_ host.Callable = (*Sub)(nil)
	_ host.Named    = (*Sub)(nil)
)

// Sub is a callable that remembers the package and name it was declared
// with. Binding it under another name later does not change its origin.
type Sub struct {
	id   uuid.UUID
	pkg  string
	name string
	body func(args ...host.Value) (host.Value, error)
}

// NewSub creates an unbound sub declared as pkg::name.
func (h *Host) NewSub(pkg, name string, body func(args ...host.Value) (host.Value, error)) *Sub {
	return &Sub{id: uuid.New(), pkg: pkg, name: name, body: body}
}

// NewAnonSub creates an anonymous sub compiled in pkg.
func (h *Host) NewAnonSub(pkg string, body func(args ...host.Value) (host.Value, error)) *Sub {
	return h.NewSub(pkg, host.AnonName, body)
}

func (s *Sub) Kind() host.Kind { return host.KindCallable }

// ID is unique per sub, including anonymous ones.
func (s *Sub) ID() uuid.UUID { return s.id }

func (s *Sub) Call(args ...host.Value) (host.Value, error) {
	if s.body == nil {
		return host.Undef, nil
	}
	return s.body(args...)
}

// Origin reports the declaring package and name. Anonymous subs report
// host.AnonName.
func (s *Sub) Origin() (pkg, name string, ok bool) {
	return s.pkg, s.name, s.pkg != "" && s.name != ""
}

// Rename changes the recorded origin, as a sub-naming utility would.
func (s *Sub) Rename(pkg, name string) {
	s.pkg, s.name = pkg, name
}

// Const returns a body that always yields v.
func Const(v host.Value) func(args ...host.Value) (host.Value, error) {
	return func(...host.Value) (host.Value, error) { return v, nil }
}
