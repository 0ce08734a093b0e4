package invoke

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/keys"
)

var ErrMethodNotFound = errors.New("method not found")

// MethodNotFoundError names the receiver and method that failed to resolve.
type MethodNotFoundError struct {
	Receiver host.Value
	Method   string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("can't locate object method %q via %v", e.Method, e.Receiver)
}

func (e *MethodNotFoundError) Unwrap() error { return ErrMethodNotFound }

// NoArgs resolves method on self and calls it with self as the only
// argument. Resolution failures wrap ErrMethodNotFound; an error returned by
// the method itself is passed back untouched.
func NoArgs(self host.Value, method string) (host.Value, error) {
	resolver, ok := self.(host.MethodResolver)
	if !ok {
		return nil, &MethodNotFoundError{Receiver: self, Method: method}
	}
	c, ok := resolver.ResolveMethod(method)
	if !ok || c == nil {
		return nil, &MethodNotFoundError{Receiver: self, Method: method}
	}
	v, err := c.Call(self)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return host.Undef, nil
	}
	return v, nil
}

// Hook calls one of the well-known zero-argument protocol hooks by key, e.g.
// keys.AssociatedMetaclass.
func Hook(self host.Value, hook keys.Key) (host.Value, error) {
	return NoArgs(self, keys.KeyFor(hook).String())
}
