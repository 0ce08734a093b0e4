package config

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/on-the-ground/mopaccel/mop/configkeys"
	"github.com/on-the-ground/mopaccel/mop/internal/helper"
	"github.com/on-the-ground/mopaccel/mop/log"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the tunables of the acceleration core and its bundled hosts.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	MethodMap MethodMapConfig `yaml:"method_map"`
	LuaHost   LuaHostConfig   `yaml:"lua_host"`
}

type LogConfig struct {
	Level string `yaml:"level"` // default: info
}

// MethodMapConfig sizes the ristretto cache behind methodmap. The cache runs
// background goroutines, so Boot only creates it when Enabled is set.
type MethodMapConfig struct {
	Enabled     bool  `yaml:"enabled"`
	NumCounters int64 `yaml:"num_counters"` // default: 10000
	MaxCost     int64 `yaml:"max_cost"`     // default: 1 << 20 (one unit per method)
	BufferItems int64 `yaml:"buffer_items"` // default: 64
}

type LuaHostConfig struct {
	CallStackSize int  `yaml:"call_stack_size"` // default: 256
	SkipOpenLibs  bool `yaml:"skip_open_libs"`
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		Log: LogConfig{Level: string(log.LogInfo)},
		MethodMap: MethodMapConfig{
			NumCounters: 10_000,
			MaxCost:     1 << 20,
			BufferItems: 64,
		},
		LuaHost: LuaHostConfig{CallStackSize: 256},
	}
}

type document struct {
	MOP Config `yaml:"mop"`
}

// Load reads a YAML document rooted at the "mop" key. Absent settings keep
// their defaults; an empty document yields Default().
func Load(r io.Reader) (Config, error) {
	doc := document{MOP: Default()}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := doc.MOP.Validate(); err != nil {
		return Config{}, err
	}
	return doc.MOP, nil
}

// FromMap builds a Config from flat settings keyed by configkeys names.
func FromMap(settings map[string]any) (Config, error) {
	cfg := Default()
	var errs error
	for key, raw := range settings {
		errs = multierr.Append(errs, cfg.set(key, raw))
	}
	if errs != nil {
		return Config{}, errs
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) set(key string, raw any) error {
	get := func() (any, bool) { return raw, true }
	switch key {
	case configkeys.ConfigLogLevel:
		v, ok := helper.GetTypedValueOf2[string](get)
		if !ok {
			return typeError(key, "string", raw)
		}
		c.Log.Level = v
	case configkeys.ConfigMethodMapEnabled:
		v, ok := helper.GetTypedValueOf2[bool](get)
		if !ok {
			return typeError(key, "bool", raw)
		}
		c.MethodMap.Enabled = v
	case configkeys.ConfigMethodMapNumCounters:
		return setNumber(key, raw, &c.MethodMap.NumCounters)
	case configkeys.ConfigMethodMapMaxCost:
		return setNumber(key, raw, &c.MethodMap.MaxCost)
	case configkeys.ConfigMethodMapBufferItems:
		return setNumber(key, raw, &c.MethodMap.BufferItems)
	case configkeys.ConfigLuaHostCallStackSize:
		var n int64
		if err := setNumber(key, raw, &n); err != nil {
			return err
		}
		c.LuaHost.CallStackSize = int(n)
	case configkeys.ConfigLuaHostSkipOpenLibs:
		v, ok := helper.GetTypedValueOf2[bool](get)
		if !ok {
			return typeError(key, "bool", raw)
		}
		c.LuaHost.SkipOpenLibs = v
	default:
		return fmt.Errorf("%w: unknown key %s", ErrInvalidConfig, key)
	}
	return nil
}

func setNumber(key string, raw any, dst *int64) error {
	n, ok := helper.Number(raw)
	if !ok {
		return typeError(key, "integer", raw)
	}
	*dst = n
	return nil
}

func typeError(key, want string, got any) error {
	return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidConfig, key, want, got)
}

// Validate reports every out-of-range setting.
func (c Config) Validate() (errs error) {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, configkeys.ConfigLogLevel, err))
	}
	positive := []struct {
		key string
		v   int64
	}{
		{configkeys.ConfigMethodMapNumCounters, c.MethodMap.NumCounters},
		{configkeys.ConfigMethodMapMaxCost, c.MethodMap.MaxCost},
		{configkeys.ConfigMethodMapBufferItems, c.MethodMap.BufferItems},
		{configkeys.ConfigLuaHostCallStackSize, int64(c.LuaHost.CallStackSize)},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.key, p.v))
		}
	}
	return errs
}
