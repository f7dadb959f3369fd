// Command lumos compiles schema files into IR and generated code.
//
// Usage:
//
//	lumos compile [-o snapshot] [entry]
//	lumos generate [-out dir] [-pkg name] [entry]
//	lumos watch [-out dir] [-pkg name] [entry]
//
// The entry file defaults to the one named in lumos.yaml. Resolution
// errors are typed by the engine; this layer only formats them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/getlumos/lumos/compiler/gen"
	"github.com/getlumos/lumos/compiler/resolve"
	"github.com/getlumos/lumos/schema/ir"
)

const configFile = "lumos.yaml"

// Config is the optional project file. Flags override it.
type Config struct {
	Entry   string `yaml:"entry"`
	OutDir  string `yaml:"outdir"`
	Package string `yaml:"package"`
}

func loadConfig() (Config, error) {
	var cfg Config
	data, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", configFile, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", configFile, err)
	}
	return cfg, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	var runErr error
	switch os.Args[1] {
	case "compile":
		runErr = runCompile(cfg, os.Args[2:])
	case "generate":
		runErr = runGenerate(cfg, os.Args[2:])
	case "watch":
		runErr = runWatch(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if runErr != nil {
		fatal(runErr)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: lumos <compile|generate|watch> [flags] [entry]")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "lumos:", err)
	os.Exit(1)
}

// entryPath picks the entry file from the positional argument or the
// config file.
func entryPath(cfg Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Entry != "" {
		return cfg.Entry, nil
	}
	return "", errors.New("no entry file: pass one or set \"entry\" in " + configFile)
}

// compileEntry runs one resolution and prints advisory notices.
func compileEntry(entry string) (*resolve.Resolver, ir.Set, error) {
	r := resolve.New()
	defs, err := r.Resolve(entry)
	if err != nil {
		return nil, nil, err
	}
	for _, notice := range r.Notices() {
		fmt.Fprintln(os.Stderr, "warning:", notice)
	}
	return r, defs, nil
}

func runCompile(cfg Config, args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	out := fs.String("o", "", "write a snapshot to this path instead of printing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entry, err := entryPath(cfg, fs.Args())
	if err != nil {
		return err
	}
	r, defs, err := compileEntry(entry)
	if err != nil {
		return err
	}
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := ir.WriteSnapshot(f, defs); err != nil {
			return err
		}
		fmt.Printf("wrote %d definitions (%d files) to %s\n", len(defs), len(r.LoadedFiles()), *out)
		return nil
	}
	for _, def := range defs {
		fmt.Printf("%-8s %s\n", def.Kind, def.QualifiedName())
	}
	return nil
}

func runGenerate(cfg Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := fs.String("out", cfg.OutDir, "output directory")
	pkg := fs.String("pkg", cfg.Package, "output package name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entry, err := entryPath(cfg, fs.Args())
	if err != nil {
		return err
	}
	if *out == "" {
		*out = "gen"
	}
	_, err = generateOnce(entry, *out, *pkg)
	return err
}

func generateOnce(entry, out, pkg string) ([]string, error) {
	r, defs, err := compileEntry(entry)
	if err != nil {
		return nil, err
	}
	g := gen.NewGenerator(defs, out).WithPackage(pkg)
	if err := g.Generate(context.Background()); err != nil {
		return nil, err
	}
	fmt.Printf("generated %d definitions into %s\n", len(defs), out)
	return r.LoadedFiles(), nil
}

// runWatch regenerates whenever any file loaded by the last successful
// resolution changes. A failed run keeps watching the previous file set.
func runWatch(cfg Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	out := fs.String("out", cfg.OutDir, "output directory")
	pkg := fs.String("pkg", cfg.Package, "output package name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entry, err := entryPath(cfg, fs.Args())
	if err != nil {
		return err
	}
	if *out == "" {
		*out = "gen"
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	loaded := map[string]bool{}
	rewatch := func(files []string) {
		for _, f := range files {
			loaded[f] = true
			// Watch directories: editors often replace files on save,
			// which drops per-file watches.
			_ = watcher.Add(filepath.Dir(f))
		}
	}
	files, err := generateOnce(entry, *out, *pkg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lumos:", err)
		files = []string{canonical(entry)}
	}
	rewatch(files)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !loaded[canonical(ev.Name)] {
				continue
			}
			files, err := generateOnce(entry, *out, *pkg)
			if err != nil {
				fmt.Fprintln(os.Stderr, "lumos:", err)
				continue
			}
			rewatch(files)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "lumos: watch:", err)
		}
	}
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}
