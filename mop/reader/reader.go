package reader

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/internal/helper"
	"github.com/on-the-ground/mopaccel/mop/keys"
	"github.com/on-the-ground/mopaccel/mop/log"
)

var (
	ErrAlreadyInstalled = errors.New("reader already installed")
	ErrWrongArgCount    = errors.New("wrong number of arguments")
	ErrNotInstance      = errors.New("invocant is not an instance")
)

// UsageError reports an accessor called with anything but a single invocant.
type UsageError struct {
	Accessor string
	Got      int
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("Usage: %s(self): expected 1 argument, got %d", e.Accessor, e.Got)
}

func (e *UsageError) Unwrap() error { return ErrWrongArgCount }

var _ host.Callable = (*Accessor)(nil)

// Accessor is one installed simple reader. All accessors share the same
// implementation; they differ only in the key they were installed with.
type Accessor struct {
	name string
	key  keys.Key
}

func (a *Accessor) Name() string    { return a.name }
func (a *Accessor) Key() keys.Key   { return a.key }
func (a *Accessor) Kind() host.Kind { return host.KindCallable }

// Call runs the shared reader body with args as the argument list.
func (a *Accessor) Call(args ...host.Value) (host.Value, error) {
	return simpleReaderEntry(a, args)
}

// simpleReaderEntry is the single implementation behind every accessor: it
// fetches the attribute named by the accessor's key from the invocant.
// Absent attributes read as host.Undef.
func simpleReaderEntry(a *Accessor, args []host.Value) (host.Value, error) {
	if len(args) != 1 {
		return nil, &UsageError{Accessor: a.name, Got: len(args)}
	}
	store, ok := args[0].(host.AttributeStore)
	if !ok {
		return nil, fmt.Errorf("%w: can't call %s as a class method", ErrNotInstance, a.name)
	}
	ref := keys.KeyFor(a.key)
	v, ok := store.FetchAttr(ref.String(), ref.Hash())
	if !ok || v == nil {
		return host.Undef, nil
	}
	return v, nil
}

// ReadAs calls acc on self and asserts the result to T.
func ReadAs[T any](acc *Accessor, self host.Value) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		return acc.Call(self)
	})
}

// Table is the registry of installed readers, keyed by exposed name.
type Table struct {
	logger    *zap.Logger
	installer host.Installer

	mu      sync.RWMutex
	readers map[string]*Accessor
}

// Option configures a Table.
type Option func(*Table)

// WithLogger logs each installation at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Table) {
		t.logger = log.OrNop(logger)
	}
}

// WithInstaller also publishes every accessor into the host under its
// exposed name.
func WithInstaller(installer host.Installer) Option {
	return func(t *Table) {
		t.installer = installer
	}
}

// NewTable returns an empty registry.
func NewTable(opts ...Option) *Table {
	t := &Table{
		logger:  zap.NewNop(),
		readers: make(map[string]*Accessor),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// InstallSimpleReader registers an accessor under name that reads key from
// its invocant. The key table must already be initialized; an unknown key
// panics.
func (t *Table) InstallSimpleReader(name string, key keys.Key) (*Accessor, error) {
	ref := keys.KeyFor(key)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.readers[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInstalled, name)
	}
	acc := &Accessor{name: name, key: key}
	if t.installer != nil {
		if err := t.installer.InstallNative(name, acc); err != nil {
			return nil, fmt.Errorf("install reader %s: %w", name, err)
		}
	}
	t.readers[name] = acc
	t.logger.Debug("simple reader installed",
		zap.String("name", name),
		zap.String("key", ref.String()),
	)
	return acc, nil
}

// InstallSimpleReaders registers every name→key pair, in name order, and
// returns all failures combined.
func (t *Table) InstallSimpleReaders(readers map[string]keys.Key) (errs error) {
	names := make([]string, 0, len(readers))
	for name := range readers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		_, err := t.InstallSimpleReader(name, readers[name])
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Lookup returns the accessor installed under name.
func (t *Table) Lookup(name string) (*Accessor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	acc, ok := t.readers[name]
	return acc, ok
}

// Names returns every installed name, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.readers))
	for name := range t.readers {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of installed readers.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.readers)
}
