package mop

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/on-the-ground/mopaccel/mop/config"
	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/keys"
	"github.com/on-the-ground/mopaccel/mop/log"
	"github.com/on-the-ground/mopaccel/mop/methodmap"
	"github.com/on-the-ground/mopaccel/mop/reader"
)

// Init prepares the prehashed key table. It must run before any other entry
// point is used from more than one goroutine.
func Init() {
	keys.Initialize()
}

// Runtime is the booted acceleration layer: the reader table with the
// standard accessors installed, and the method map cache when enabled.
type Runtime struct {
	Config     config.Config
	Logger     *zap.Logger
	Readers    *reader.Table
	MethodMaps *methodmap.Cache
}

// Boot initializes the key table and installs the standard readers. When
// installer is not nil the readers are also published into the host.
//
// The method map cache is created only when cfg.MethodMap.Enabled is set;
// otherwise the runtime starts no goroutines and Methods builds every map
// on demand.
func Boot(cfg config.Config, installer host.Installer, logger *zap.Logger) (*Runtime, error) {
	logger = log.OrNop(logger)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	Init()

	opts := []reader.Option{reader.WithLogger(logger)}
	if installer != nil {
		opts = append(opts, reader.WithInstaller(installer))
	}
	readers := reader.NewTable(opts...)
	if err := readers.InstallSimpleReaders(reader.StandardReaders()); err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}

	var methodMaps *methodmap.Cache
	if cfg.MethodMap.Enabled {
		var err error
		methodMaps, err = methodmap.New(cfg.MethodMap, methodmap.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("boot: %w", err)
		}
	}

	logger.Debug("mop booted",
		zap.Int("readers", readers.Len()),
		zap.Int("keys", len(keys.All())),
		zap.Bool("method_map_cache", methodMaps != nil),
	)
	return &Runtime{
		Config:     cfg,
		Logger:     logger,
		Readers:    readers,
		MethodMaps: methodMaps,
	}, nil
}

// Methods returns the method map of ns, through the cache when one exists.
func (r *Runtime) Methods(ns host.Namespace) map[string]host.Callable {
	if r.MethodMaps == nil {
		return methodmap.Build(ns)
	}
	return r.MethodMaps.Methods(ns)
}

// Close releases the method map cache, if any.
func (r *Runtime) Close() {
	if r.MethodMaps != nil {
		r.MethodMaps.Close()
	}
}
