package memhost

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	memdb "github.com/hashicorp/go-memdb"
	"go.uber.org/zap"

	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/keys"
)

var _ host.Installer = (*Host)(nil)

const (
	symbolTable    = "symbol"
	idIndex        = "id"
	namespaceIndex = "namespace"

	universal = "UNIVERSAL"
)

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			symbolTable: {
				Name: symbolTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:    idIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					namespaceIndex: {
						Name:    namespaceIndex,
						Indexer: &memdb.StringFieldIndex{Field: "Namespace"},
					},
				},
			},
		},
	}
}

// symbol is one slot of a namespace entry. A name holds at most one slot per
// kind.
type symbol struct {
	ID        string
	Namespace string
	Name      string
	Kind      host.Kind
	Value     host.Value
}

func symbolID(ns, name string, kind host.Kind) string {
	return fmt.Sprintf("%s\x00%s\x00%d", ns, name, kind)
}

// Host is an in-memory object system: packages of symbol slots stored in
// go-memdb, subs with a declaring origin, and hash-keyed objects.
type Host struct {
	db       *memdb.MemDB
	logger   *zap.Logger
	shuffled bool

	mu         sync.Mutex
	namespaces map[string]*Namespace
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger used for namespace and install events.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithStableOrder makes Range yield entries in storage order instead of a
// shuffled order.
func WithStableOrder() Option {
	return func(h *Host) {
		h.shuffled = false
	}
}

// New creates an empty host.
func New(opts ...Option) (*Host, error) {
	keys.Initialize()

	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("memhost: create symbol store: %w", err)
	}
	h := &Host{
		db:         db,
		logger:     zap.NewNop(),
		shuffled:   true,
		namespaces: make(map[string]*Namespace),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Namespace returns the named package, creating it on first use.
func (h *Host) Namespace(name string) *Namespace {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ns, ok := h.namespaces[name]; ok {
		return ns
	}
	ns := &Namespace{host: h, name: name}
	h.namespaces[name] = ns
	h.logger.Debug("namespace created", zap.String("namespace", name))
	return ns
}

// LookupNamespace returns the named package only if it exists.
func (h *Host) LookupNamespace(name string) (*Namespace, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ns, ok := h.namespaces[name]
	return ns, ok
}

// Namespaces returns the names of every package, sorted.
func (h *Host) Namespaces() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, len(h.namespaces))
	for name := range h.namespaces {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// InstallNative binds fn as a sub named fqName. The installed sub reports
// fqName as its declaring location.
func (h *Host) InstallNative(fqName string, fn host.Callable) error {
	if fn == nil {
		return fmt.Errorf("memhost: install %s: nil callable", fqName)
	}
	pkg, name := host.SplitQualified(fqName)
	if name == "" {
		return fmt.Errorf("memhost: install %q: empty sub name", fqName)
	}
	sub := h.NewSub(pkg, name, fn.Call)
	if err := h.Namespace(pkg).Set(name, sub); err != nil {
		return err
	}
	h.logger.Debug("native installed", zap.String("name", fqName))
	return nil
}

// ResolveMethod looks method up in class and then depth-first through the
// ISA arrays of its parents, finishing with UNIVERSAL.
func (h *Host) ResolveMethod(class, method string) (host.Callable, bool) {
	seen := make(map[string]struct{})
	if c, ok := h.resolveIn(class, method, seen); ok {
		return c, true
	}
	if _, done := seen[universal]; !done {
		return h.resolveIn(universal, method, seen)
	}
	return nil, false
}

func (h *Host) resolveIn(class, method string, seen map[string]struct{}) (host.Callable, bool) {
	if _, ok := seen[class]; ok {
		return nil, false
	}
	seen[class] = struct{}{}

	ns, ok := h.LookupNamespace(class)
	if !ok {
		return nil, false
	}
	if v, ok := ns.Get(method, host.KindCallable); ok {
		return v.(host.Callable), true
	}
	for _, parent := range ns.ISA() {
		if c, ok := h.resolveIn(parent, method, seen); ok {
			return c, true
		}
	}
	return nil, false
}

func (h *Host) rangeNamespace(ns string, fn func(name string, v host.Value) bool) {
	txn := h.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(symbolTable, namespaceIndex, ns)
	if err != nil {
		panic(fmt.Errorf("memhost: scan %s: %w", ns, err))
	}
	if !h.shuffled {
		for raw := it.Next(); raw != nil; raw = it.Next() {
			s := raw.(*symbol)
			if !fn(s.Name, s.Value) {
				return
			}
		}
		return
	}

	var syms []*symbol
	for raw := it.Next(); raw != nil; raw = it.Next() {
		syms = append(syms, raw.(*symbol))
	}
	rand.Shuffle(len(syms), func(i, j int) { syms[i], syms[j] = syms[j], syms[i] })
	for _, s := range syms {
		if !fn(s.Name, s.Value) {
			return
		}
	}
}

func (h *Host) get(ns, name string, kind host.Kind) (host.Value, bool) {
	txn := h.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(symbolTable, idIndex, symbolID(ns, name, kind))
	if err != nil || raw == nil {
		return nil, false
	}
	return raw.(*symbol).Value, true
}

func (h *Host) put(ns, name string, v host.Value) error {
	txn := h.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(symbolTable, &symbol{
		ID:        symbolID(ns, name, v.Kind()),
		Namespace: ns,
		Name:      name,
		Kind:      v.Kind(),
		Value:     v,
	}); err != nil {
		return fmt.Errorf("memhost: bind %s::%s: %w", ns, name, err)
	}
	txn.Commit()
	return nil
}

func (h *Host) delete(ns, name string, kind host.Kind) (bool, error) {
	txn := h.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(symbolTable, idIndex, symbolID(ns, name, kind))
	if err != nil {
		return false, err
	} else if raw == nil {
		return false, nil
	}
	if err := txn.Delete(symbolTable, raw); err != nil {
		return false, err
	}
	txn.Commit()
	return true, nil
}
