package keys

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Key is the ordinal of one well-known attribute or protocol name.
type Key uint8

const (
	Name Key = iota
	Package
	PackageName
	Body
	PackageCacheFlag
	Methods
	Version
	ISA
	MethodMetaclass
	AssociatedMetaclass
	Wrap

	keyLast
)

var names = [keyLast]string{
	Name:                "name",
	Package:             "package",
	PackageName:         "package_name",
	Body:                "body",
	PackageCacheFlag:    "_package_cache_flag",
	Methods:             "methods",
	Version:             "VERSION",
	ISA:                 "ISA",
	MethodMetaclass:     "method_metaclass",
	AssociatedMetaclass: "associated_metaclass",
	Wrap:                "wrap",
}

var (
	ErrNotInitialized = errors.New("prehashed keys used before Initialize")
	ErrUnknownKey     = errors.New("unknown prehashed key")
)

// Entry is the interned form of a key. Entries live in a process-wide table
// and are never copied out of it.
type Entry struct {
	key  Key
	str  string
	hash uint64
}

func (e *Entry) Key() Key            { return e.key }
func (e *Entry) String() string      { return e.str }
func (e *Entry) Hash() uint64        { return e.hash }
func (e *Entry) Equal(s string) bool { return e.str == s }

// Ref is a non-owning reference into the key table.
type Ref = *Entry

var (
	table       [keyLast]Entry
	initOnce    sync.Once
	initialized atomic.Bool
)

// Initialize populates the key table. It must run once before any concurrent
// reader; later calls are no-ops and every Ref stays valid.
func Initialize() {
	initOnce.Do(func() {
		for k := Key(0); k < keyLast; k++ {
			table[k] = Entry{key: k, str: names[k], hash: Hash(names[k])}
		}
		initialized.Store(true)
	})
}

// Initialized reports whether Initialize has completed.
func Initialized() bool {
	return initialized.Load()
}

// Hash is the hashing function every host adapter uses for attribute and
// symbol storage.
func Hash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// KeyFor returns the interned entry for k. It panics if the table is not
// initialized or k is not a known key.
func KeyFor(k Key) Ref {
	return entry(k)
}

// HashFor returns the precomputed hash for k.
func HashFor(k Key) uint64 {
	return entry(k).hash
}

func entry(k Key) *Entry {
	if k >= keyLast {
		panic(fmt.Errorf("%w: %d", ErrUnknownKey, uint8(k)))
	}
	if !initialized.Load() {
		panic(ErrNotInitialized)
	}
	return &table[k]
}

// String returns the canonical name of k without touching the table.
func (k Key) String() string {
	if k >= keyLast {
		return fmt.Sprintf("key(%d)", uint8(k))
	}
	return names[k]
}

// Valid reports whether k belongs to the enumeration.
func (k Key) Valid() bool {
	return k < keyLast
}

// Lookup maps a canonical name back to its key.
func Lookup(name string) (Key, bool) {
	for k := Key(0); k < keyLast; k++ {
		if names[k] == name {
			return k, true
		}
	}
	return 0, false
}

// All returns every key in ordinal order.
func All() []Key {
	out := make([]Key, 0, keyLast)
	for k := Key(0); k < keyLast; k++ {
		out = append(out, k)
	}
	return out
}
