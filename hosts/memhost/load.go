package memhost

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/multierr"

	"github.com/on-the-ground/mopaccel/mop/host"
)

var ErrInvalidFixture = errors.New("memhost: invalid fixture")

// LoadJSON populates the host from a package description:
//
//	{"packages": {"Foo": {
//	    "generation": 7,
//	    "isa":     ["Base"],
//	    "scalars": {"VERSION": "1.0"},
//	    "arrays":  {"EXPORT": ["bar"]},
//	    "hashes":  {"CONFIG": {"k": "v"}},
//	    "io":      ["DATA"],
//	    "subs":    {"bar": 42},
//	    "imports": {"first": "List::first"}
//	}}}
//
// Subs return their JSON value. Imports bind a sub declared elsewhere, so its
// origin stays with the declaring package. Imports are resolved after every
// package's subs exist, and generation markers are set last.
func (h *Host) LoadJSON(doc []byte) error {
	if !gjson.ValidBytes(doc) {
		return fmt.Errorf("%w: malformed JSON", ErrInvalidFixture)
	}
	pkgs := gjson.GetBytes(doc, "packages")
	if !pkgs.IsObject() {
		return fmt.Errorf("%w: missing packages object", ErrInvalidFixture)
	}

	var errs error
	pkgs.ForEach(func(name, desc gjson.Result) bool {
		errs = multierr.Append(errs, h.loadPackage(name.String(), desc))
		return true
	})
	pkgs.ForEach(func(name, desc gjson.Result) bool {
		errs = multierr.Append(errs, h.loadImports(name.String(), desc.Get("imports")))
		return true
	})
	pkgs.ForEach(func(name, desc gjson.Result) bool {
		if gen := desc.Get("generation"); gen.Exists() {
			h.Namespace(name.String()).SetGeneration(gen.Uint())
		}
		return true
	})
	return errs
}

func (h *Host) loadPackage(pkg string, desc gjson.Result) (err error) {
	ns := h.Namespace(pkg)

	if isa := desc.Get("isa"); isa.Exists() {
		var parents []string
		for _, p := range isa.Array() {
			parents = append(parents, p.String())
		}
		err = multierr.Append(err, ns.SetISA(parents...))
	}
	desc.Get("scalars").ForEach(func(k, v gjson.Result) bool {
		err = multierr.Append(err, ns.Set(k.String(), host.NewScalar(scalarOf(v))))
		return true
	})
	desc.Get("arrays").ForEach(func(k, v gjson.Result) bool {
		if !v.IsArray() {
			err = multierr.Append(err, fmt.Errorf("%w: %s::@%s is not an array", ErrInvalidFixture, pkg, k))
			return true
		}
		err = multierr.Append(err, ns.Set(k.String(), valueOf(v)))
		return true
	})
	desc.Get("hashes").ForEach(func(k, v gjson.Result) bool {
		if !v.IsObject() {
			err = multierr.Append(err, fmt.Errorf("%w: %s::%%%s is not an object", ErrInvalidFixture, pkg, k))
			return true
		}
		err = multierr.Append(err, ns.Set(k.String(), valueOf(v)))
		return true
	})
	for _, handle := range desc.Get("io").Array() {
		err = multierr.Append(err, ns.Set(handle.String(), &host.IO{Name: handle.String()}))
	}
	desc.Get("subs").ForEach(func(k, v gjson.Result) bool {
		_, defErr := ns.DefineSub(k.String(), Const(valueOf(v)))
		err = multierr.Append(err, defErr)
		return true
	})
	return err
}

func (h *Host) loadImports(pkg string, imports gjson.Result) (err error) {
	ns := h.Namespace(pkg)
	imports.ForEach(func(k, v gjson.Result) bool {
		from, name := host.SplitQualified(v.String())
		src, ok := h.LookupNamespace(from)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: %s imports unknown package %s", ErrInvalidFixture, pkg, from))
			return true
		}
		sub, ok := src.Get(name, host.KindCallable)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: %s imports unknown sub %s", ErrInvalidFixture, pkg, v.String()))
			return true
		}
		err = multierr.Append(err, ns.Set(k.String(), sub))
		return true
	})
	return err
}

func scalarOf(r gjson.Result) any {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if f := r.Float(); f == float64(int64(f)) {
			return r.Int()
		}
		return r.Float()
	case gjson.Null:
		return nil
	default:
		return r.String()
	}
}

func valueOf(r gjson.Result) host.Value {
	switch {
	case r.Type == gjson.Null:
		return host.Undef
	case r.IsArray():
		items := make([]host.Value, 0)
		for _, it := range r.Array() {
			items = append(items, valueOf(it))
		}
		return host.NewArray(items...)
	case r.IsObject():
		m := make(map[string]host.Value)
		r.ForEach(func(k, v gjson.Result) bool {
			m[k.String()] = valueOf(v)
			return true
		})
		return host.NewMapping(m)
	default:
		return host.NewScalar(scalarOf(r))
	}
}
