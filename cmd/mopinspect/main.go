// Command mopinspect loads a package description into a host and prints the
// symbols, cache generation and method map of one package.
//
//	mopinspect -lua classes.lua -package Foo -filter CODE
//	mopinspect -fixture packages.json -package Foo -config mop.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/on-the-ground/mopaccel/hosts/luahost"
	"github.com/on-the-ground/mopaccel/hosts/memhost"
	"github.com/on-the-ground/mopaccel/mop"
	"github.com/on-the-ground/mopaccel/mop/config"
	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/log"
	"github.com/on-the-ground/mopaccel/mop/nsutil"
	"github.com/on-the-ground/mopaccel/mop/symbols"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "mopinspect:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	luaPath     string
	fixturePath string
	configPath  string
	pkg         string
	filter      symbols.TypeFilter
}

func parseArgs(args []string) (options, error) {
	var (
		opts   options
		filter string
	)
	fs := flag.NewFlagSet("mopinspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.luaPath, "lua", "", "Lua script declaring packages")
	fs.StringVar(&opts.fixturePath, "fixture", "", "JSON package description for the in-memory host")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.pkg, "package", "main", "package to inspect")
	fs.StringVar(&filter, "filter", "", "symbol kind: CODE, ARRAY, IO, HASH, SCALAR or empty for all")
	if err := fs.Parse(args); err != nil {
		return options{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	if (opts.luaPath == "") == (opts.fixturePath == "") {
		return options{}, fmt.Errorf("%w: exactly one of -lua or -fixture is required", errUsage)
	}
	f, err := symbols.ParseTypeFilter(filter)
	if err != nil {
		return options{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	opts.filter = f
	return opts, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return config.Config{}, err
	}
	defer f.Close()
	return config.Load(f)
}

type loadedHost struct {
	installer host.Installer
	load      func() error
	lookup    func(name string) (host.Namespace, bool)
	close     func()
}

func openHost(opts options, cfg config.Config, logger *zap.Logger) (*loadedHost, error) {
	if opts.luaPath != "" {
		h := luahost.New(cfg.LuaHost, luahost.WithLogger(logger))
		return &loadedHost{
			installer: h,
			load:      func() error { return h.DoFile(opts.luaPath) },
			lookup: func(name string) (host.Namespace, bool) {
				return h.LookupNamespace(name)
			},
			close: h.Close,
		}, nil
	}

	doc, err := os.ReadFile(opts.fixturePath)
	if err != nil {
		return nil, err
	}
	h, err := memhost.New(memhost.WithLogger(logger), memhost.WithStableOrder())
	if err != nil {
		return nil, err
	}
	return &loadedHost{
		installer: h,
		load:      func() error { return h.LoadJSON(doc) },
		lookup: func(name string) (host.Namespace, bool) {
			return h.LookupNamespace(name)
		},
		close: func() {},
	}, nil
}

func run(args []string, out io.Writer) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := log.NewZapLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync(logger)

	h, err := openHost(opts, cfg, logger)
	if err != nil {
		return err
	}
	defer h.close()

	rt, err := mop.Boot(cfg, h.installer, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Loaded after boot so scripts can call the standard readers.
	if err := h.load(); err != nil {
		return err
	}

	ns, ok := h.lookup(opts.pkg)
	if !ok {
		return fmt.Errorf("package %s not found", opts.pkg)
	}
	return report(out, ns, opts.filter, rt)
}

func report(out io.Writer, ns host.Namespace, filter symbols.TypeFilter, rt *mop.Runtime) error {
	w := &errWriter{w: out}

	w.printf("package %s\n", ns.Name())
	if gen, ok := nsutil.CacheGenerationOf(ns); ok {
		w.printf("generation %d\n", gen)
	} else {
		w.printf("generation none\n")
	}

	w.printf("\nsymbols (%s)\n", filter)
	entries := make([]string, 0)
	symbols.ForEach(ns, filter, func(name string, v host.Value) bool {
		entries = append(entries, fmt.Sprintf("  %-24s %s", name, v.Kind()))
		return true
	})
	slices.Sort(entries)
	for _, e := range entries {
		w.printf("%s\n", e)
	}

	w.printf("\nmethods\n")
	methods := rt.Methods(ns)
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		loc, ok := nsutil.DeclaringLocationOf(methods[name])
		if !ok {
			w.printf("  %s\n", name)
			continue
		}
		w.printf("  %-24s %s\n", name, loc)
	}
	return w.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
