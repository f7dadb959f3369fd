// Package resolve implements the schema resolution engine: it turns one
// or more schema files, organized as a flat import graph or a
// hierarchical module tree, into a single validated IR set.
//
// The engine is single-threaded and fails fast: the first error aborts
// the whole run and no partial IR is ever returned. A Resolver instance
// is single-use; callers run one resolution per instance and must not
// share an instance across goroutines.
package resolve

import (
	"github.com/getlumos/lumos/schema/ast"
	"github.com/getlumos/lumos/schema/ir"
)

// Strategy identifies which graph resolver a resolution run selected.
type Strategy uint8

const (
	// StrategySingle is the single-file fast path: no graph resolver,
	// only alias resolution and validation.
	StrategySingle Strategy = iota
	// StrategyImports is the flat import-graph resolver.
	StrategyImports
	// StrategyModules is the hierarchical module-tree resolver.
	StrategyModules
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategySingle:
		return "single-file"
	case StrategyImports:
		return "imports"
	case StrategyModules:
		return "modules"
	default:
		return "unknown"
	}
}

// Resolver is the engine's entry point. It inspects the entry file and
// selects the resolution strategy: mod declarations select the
// hierarchical resolver, import clauses select the flat resolver, and a
// self-contained file skips both graph resolvers entirely.
type Resolver struct {
	overlay map[string][]byte

	strategy Strategy
	loaded   []string
	notices  []string
	imports  *ImportResolver
	modules  *ModuleResolver
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSource supplies an in-memory source for path, shadowing the
// filesystem. The language server uses this to resolve live-edited
// buffers through the same path as on-disk files.
func WithSource(path string, src []byte) Option {
	return func(r *Resolver) {
		r.overlay[path] = src
	}
}

// New returns a Resolver for one resolution run.
func New(opts ...Option) *Resolver {
	r := &Resolver{overlay: make(map[string][]byte)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the engine on the entry file and returns the ordered,
// validated IR set.
func (r *Resolver) Resolve(entry string) (ir.Set, error) {
	ld := newLoader(r.overlay)
	file, _, err := ld.load(entry)
	if err != nil {
		return nil, err
	}
	var defs ir.Set
	switch {
	case file.HasModDecls():
		r.strategy = StrategyModules
		r.modules = newModuleResolver(ld)
		defs, err = r.modules.ResolveModules(entry)
	case file.HasImportDecls():
		r.strategy = StrategyImports
		r.imports = newImportResolver(ld)
		defs, _, err = r.imports.ResolveImports(entry)
		if err == nil {
			err = r.imports.ValidateImports()
		}
	default:
		r.strategy = StrategySingle
		defs, err = resolveSingle(file)
	}
	if err != nil {
		return nil, err
	}
	r.loaded = ld.loadedFiles()
	r.notices = DeprecationNotices(defs)
	return defs, nil
}

// ResolveSource resolves an in-memory source string under a virtual
// path. Imports and modules referenced by the source resolve against
// the filesystem (and any other overlays) as usual.
func (r *Resolver) ResolveSource(src []byte, path string) (ir.Set, error) {
	r.overlay[path] = src
	return r.Resolve(path)
}

// resolveSingle lowers a self-contained file: alias resolution and
// validation only, with no graph resolver invoked.
func resolveSingle(file *ast.File) (ir.Set, error) {
	aliases := NewAliasResolver()
	if err := aliases.AddFile(file); err != nil {
		return nil, err
	}
	if err := aliases.ResolveAll(); err != nil {
		return nil, err
	}
	defs, err := Transform(file, aliases, nil)
	if err != nil {
		return nil, err
	}
	if err := ValidateDefs(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// Strategy returns the resolution strategy the last run selected.
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// LoadedFiles returns the canonical identities of every file the last
// run loaded, in first-discovery order. Watch tooling uses this to
// decide which paths should trigger a re-run.
func (r *Resolver) LoadedFiles() []string {
	return append([]string{}, r.loaded...)
}

// Notices returns the advisory deprecation notices collected by the
// last run. Notices never fail a resolution.
func (r *Resolver) Notices() []string {
	return append([]string{}, r.notices...)
}

// ModuleTree returns the root of the resolved module tree, or nil when
// the last run did not use the hierarchical resolver. IDE navigation
// walks this tree by canonical identity via Module.
func (r *Resolver) ModuleTree() *Module {
	if r.modules == nil {
		return nil
	}
	return r.modules.Root()
}

// Module returns the module with the given canonical identity, or nil.
func (r *Resolver) Module(path string) *Module {
	if r.modules == nil {
		return nil
	}
	return r.modules.Module(path)
}
