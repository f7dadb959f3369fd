package resolve

import (
	"path/filepath"

	"github.com/getlumos/lumos/schema/ast"
	"github.com/getlumos/lumos/schema/ir"
)

// ImportResolver resolves JavaScript-style `import {A, B} from "path"`
// declarations into a merged, deduplicated file set and lowers it to a
// single validated IR. Import paths are relative to the importing
// file's directory; the schema extension is inferred when absent.
//
// A resolver instance is single-use and not safe for concurrent use.
type ImportResolver struct {
	ld      *loader
	visited map[string]bool
	// files holds the parsed files in first-discovery order. Aliases
	// from every file are merged before any file is lowered, so aliases
	// and forward type references are visible across files.
	files []*ast.File
}

// NewImportResolver returns a resolver for one resolution run.
func NewImportResolver() *ImportResolver {
	return newImportResolver(newLoader(nil))
}

func newImportResolver(ld *loader) *ImportResolver {
	return &ImportResolver{ld: ld, visited: make(map[string]bool)}
}

// ResolveImports loads entry and transitively every imported file,
// lowers the merged set to IR, and validates it as one unit. It returns
// the IR and the number of distinct files loaded.
func (r *ImportResolver) ResolveImports(entry string) (ir.Set, int, error) {
	if err := r.loadFile(entry); err != nil {
		return nil, 0, err
	}
	aliases := NewAliasResolver()
	for _, f := range r.files {
		if err := aliases.AddFile(f); err != nil {
			return nil, 0, err
		}
	}
	if err := aliases.ResolveAll(); err != nil {
		return nil, 0, err
	}
	var defs ir.Set
	for _, f := range r.files {
		fragment, err := Transform(f, aliases, nil)
		if err != nil {
			return nil, 0, err
		}
		defs = append(defs, fragment...)
	}
	if err := ValidateDefs(defs); err != nil {
		return nil, 0, err
	}
	return defs, len(r.files), nil
}

// loadFile loads one file and recurses into its imports, detecting
// cycles through the in-progress stack.
func (r *ImportResolver) loadFile(path string) error {
	canon := canonicalPath(path)
	if r.ld.onStack(canon) {
		return &CircularImportError{Chain: r.ld.cycleChain(canon)}
	}
	if r.visited[canon] {
		return nil
	}
	file, canon, err := r.ld.load(path)
	if err != nil {
		return err
	}
	r.visited[canon] = true
	r.files = append(r.files, file)
	r.ld.push(canon)
	defer r.ld.pop()
	dir := filepath.Dir(canon)
	for _, decl := range file.Decls {
		imp, ok := decl.(*ast.ImportDecl)
		if !ok {
			continue
		}
		if err := r.loadFile(importTarget(dir, imp.From)); err != nil {
			return err
		}
	}
	return nil
}

// importTarget resolves an import path against the importing file's
// directory, appending the schema extension when missing.
func importTarget(dir, from string) string {
	if filepath.Ext(from) == "" {
		from += SchemaExt
	}
	return filepath.Join(dir, from)
}

// ValidateImports checks that every name listed in an `import {...}`
// clause is defined somewhere in the loaded set. It may only be called
// after ResolveImports.
func (r *ImportResolver) ValidateImports() error {
	declared := make(map[string]bool)
	for _, f := range r.files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.RecordDecl:
				declared[d.Name] = true
			case *ast.VariantDecl:
				declared[d.Name] = true
			case *ast.AliasDecl:
				declared[d.Name] = true
			}
		}
	}
	for _, f := range r.files {
		for _, d := range f.Decls {
			imp, ok := d.(*ast.ImportDecl)
			if !ok {
				continue
			}
			for _, name := range imp.Names {
				if !declared[name] {
					return &MissingImportError{Name: name, File: f.Path, From: imp.From}
				}
			}
		}
	}
	return nil
}

// LoadedFiles returns the canonical identities of every loaded file in
// first-discovery order.
func (r *ImportResolver) LoadedFiles() []string {
	return r.ld.loadedFiles()
}
