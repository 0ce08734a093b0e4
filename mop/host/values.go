package host

import (
	"fmt"
	"strings"
)

var (
	_ Value    = undef{}
	_ Value    = Scalar{}
	_ Value    = (*Array)(nil)
	_ Value    = (*Mapping)(nil)
	_ Value    = (*IO)(nil)
	_ Callable = Func(nil)
)

type undef struct{}

func (undef) Kind() Kind     { return KindUndef }
func (undef) String() string { return "undef" }

// Undef is the explicit undefined marker returned for absent attributes.
var Undef Value = undef{}

// IsUndef reports whether v is nil or the Undef marker.
func IsUndef(v Value) bool {
	return v == nil || v.Kind() == KindUndef
}

// Scalar wraps a single Go value (string, number, reference...).
type Scalar struct {
	V any
}

func (Scalar) Kind() Kind { return KindScalar }

func (s Scalar) String() string { return fmt.Sprintf("%v", s.V) }

// NewScalar returns a Scalar holding v.
func NewScalar(v any) Scalar {
	return Scalar{V: v}
}

// Array is an ordered list of values.
type Array struct {
	Items []Value
}

func (*Array) Kind() Kind { return KindArray }

// NewArray returns an Array holding items.
func NewArray(items ...Value) *Array {
	return &Array{Items: items}
}

// Strings returns the string form of each scalar item; other items are skipped.
func (a *Array) Strings() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.Items))
	for _, it := range a.Items {
		if s, ok := it.(Scalar); ok {
			out = append(out, s.String())
		}
	}
	return out
}

// Mapping is a string-keyed map of values.
type Mapping struct {
	Entries map[string]Value
}

func (*Mapping) Kind() Kind { return KindMapping }

// NewMapping returns a Mapping backed by entries; nil becomes an empty map.
func NewMapping(entries map[string]Value) *Mapping {
	if entries == nil {
		entries = make(map[string]Value)
	}
	return &Mapping{Entries: entries}
}

// IO is a stream handle bound in a namespace.
type IO struct {
	Name string
}

func (*IO) Kind() Kind { return KindIO }

// Func adapts a plain Go function into a Callable.
type Func func(args ...Value) (Value, error)

func (Func) Kind() Kind { return KindCallable }

func (f Func) Call(args ...Value) (Value, error) { return f(args...) }

// SplitQualified splits "A::B::c" into ("A::B", "c"). A name without a
// separator belongs to the "main" package.
func SplitQualified(fq string) (pkg, name string) {
	i := strings.LastIndex(fq, "::")
	if i < 0 {
		return "main", fq
	}
	return fq[:i], fq[i+2:]
}
