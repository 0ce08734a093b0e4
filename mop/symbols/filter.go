package symbols

import (
	"fmt"
	"strings"

	"github.com/on-the-ground/mopaccel/mop/host"
)

// TypeFilter restricts enumeration to entries of one kind.
type TypeFilter uint8

const (
	FilterNone TypeFilter = iota
	FilterCallable
	FilterArray
	FilterIO
	FilterMapping
	FilterScalar
)

func (f TypeFilter) String() string {
	switch f {
	case FilterNone:
		return "none"
	case FilterCallable:
		return "callable"
	case FilterArray:
		return "array"
	case FilterIO:
		return "io"
	case FilterMapping:
		return "mapping"
	case FilterScalar:
		return "scalar"
	default:
		return fmt.Sprintf("filter(%d)", uint8(f))
	}
}

// Matches reports whether v passes the filter. Undefined values only pass
// FilterNone.
func (f TypeFilter) Matches(v host.Value) bool {
	if f == FilterNone {
		return true
	}
	if v == nil {
		return false
	}
	switch v.Kind() {
	case host.KindCallable:
		return f == FilterCallable
	case host.KindArray:
		return f == FilterArray
	case host.KindIO:
		return f == FilterIO
	case host.KindMapping:
		return f == FilterMapping
	case host.KindScalar:
		return f == FilterScalar
	default:
		return false
	}
}

// ParseTypeFilter accepts both the lowercase names and the sigil-style type
// names (CODE, ARRAY, IO, HASH, SCALAR).
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FilterNone, nil
	case "callable", "code":
		return FilterCallable, nil
	case "array":
		return FilterArray, nil
	case "io":
		return FilterIO, nil
	case "mapping", "hash":
		return FilterMapping, nil
	case "scalar":
		return FilterScalar, nil
	default:
		return FilterNone, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}
