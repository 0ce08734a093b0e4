package host

import "fmt"

// Kind classifies the value bound to a namespace entry.
type Kind uint8

const (
	KindUndef Kind = iota
	KindScalar
	KindArray
	KindMapping
	KindCallable
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindUndef:
		return "undef"
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindMapping:
		return "mapping"
	case KindCallable:
		return "callable"
	case KindIO:
		return "io"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// AnonName is the entry name hosts give to callables that were never bound
// to a namespace entry.
const AnonName = "__ANON__"

// Value is any host value the core can see.
type Value interface {
	Kind() Kind
}

// Namespace is a borrowed handle on one package's symbol table.
// Range may yield the same name more than once when the host keeps one slot
// per kind under a single name. Implementations must not promise an order.
type Namespace interface {
	Name() string
	Range(fn func(name string, v Value) bool)
}

// Generational is implemented by namespaces that carry a cache-invalidation
// marker.
type Generational interface {
	Generation() (gen uint64, ok bool)
}

// Callable is an invocable host value.
type Callable interface {
	Value
	Call(args ...Value) (Value, error)
}

// Named is implemented by callables that know where they were declared.
type Named interface {
	Origin() (pkg, name string, ok bool)
}

// AttributeStore is the host's generic attribute-get, addressed by the
// canonical key string together with its precomputed hash.
type AttributeStore interface {
	Value
	FetchAttr(name string, hash uint64) (Value, bool)
}

// MethodResolver resolves a method name through the host's method resolution
// order.
type MethodResolver interface {
	Value
	ResolveMethod(name string) (Callable, bool)
}

// Installer publishes a native callable under a fully qualified name
// ("Pkg::Sub::name").
type Installer interface {
	InstallNative(fqName string, fn Callable) error
}
