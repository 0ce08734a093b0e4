package memhost

import (
	"github.com/google/uuid"

	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/keys"
)

var (
	_ host.AttributeStore = (*Object)(nil)
	_ host.MethodResolver = (*Object)(nil)
)

type attrSlot struct {
	name string
	v    host.Value
}

// Object is a blessed instance: attribute storage bucketed by the key hash
// plus the name of its class package. Objects are not safe for concurrent
// writes.
type Object struct {
	id    uuid.UUID
	host  *Host
	class string
	slots map[uint64][]attrSlot
}

// NewObject creates an empty instance of class.
func (h *Host) NewObject(class string) *Object {
	return &Object{
		id:    uuid.New(),
		host:  h,
		class: class,
		slots: make(map[uint64][]attrSlot),
	}
}

// Objects are references, so they live in scalar slots.
func (o *Object) Kind() host.Kind { return host.KindScalar }

func (o *Object) ID() uuid.UUID  { return o.id }
func (o *Object) Class() string  { return o.class }
func (o *Object) String() string { return o.class + "=" + o.id.String() }

// FetchAttr looks an attribute up by name using a caller-supplied hash.
func (o *Object) FetchAttr(name string, hash uint64) (host.Value, bool) {
	for _, s := range o.slots[hash] {
		if s.name == name {
			return s.v, true
		}
	}
	return nil, false
}

// Attr hashes name and looks it up.
func (o *Object) Attr(name string) (host.Value, bool) {
	return o.FetchAttr(name, keys.Hash(name))
}

// SetAttr stores v under name.
func (o *Object) SetAttr(name string, v host.Value) {
	h := keys.Hash(name)
	bucket := o.slots[h]
	for i := range bucket {
		if bucket[i].name == name {
			bucket[i].v = v
			return
		}
	}
	o.slots[h] = append(bucket, attrSlot{name: name, v: v})
}

// DeleteAttr removes name from the instance.
func (o *Object) DeleteAttr(name string) {
	h := keys.Hash(name)
	bucket := o.slots[h]
	for i := range bucket {
		if bucket[i].name == name {
			o.slots[h] = append(bucket[:i], bucket[i+1:]...)
			if len(o.slots[h]) == 0 {
				delete(o.slots, h)
			}
			return
		}
	}
}

// ResolveMethod resolves through the object's class.
func (o *Object) ResolveMethod(name string) (host.Callable, bool) {
	return o.host.ResolveMethod(o.class, name)
}

var _ host.MethodResolver = (*ClassRef)(nil)

// ClassRef is a bare class name used as an invocant. It resolves methods
// but has no attribute storage.
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
