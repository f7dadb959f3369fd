package resolve

import (
	"path/filepath"
	"strings"

	"github.com/getlumos/lumos/schema/ast"
	"github.com/getlumos/lumos/schema/ir"
)

// Module is one node of the resolved module tree. Nodes reference their
// parent and children by canonical file identity into the resolver's
// module table rather than by pointer, so the tree carries no ownership
// cycles. Nodes are created once per canonical identity and never
// mutated after their subtree has loaded.
type Module struct {
	// Name is the declared module name, empty for the root.
	Name string
	// Path is the canonical file identity backing this module.
	Path string
	// File is the module's own syntax tree.
	File *ast.File
	// Children maps declared child-module names to their canonical
	// identities.
	Children map[string]string
	// Parent is the canonical identity of the enclosing module, empty
	// for the root.
	Parent string
}

// ModuleResolver resolves Rust-style `mod name;` declarations into a
// module tree and `use` paths into concrete type references, enforcing
// public/private visibility across module boundaries.
//
// A resolver instance is single-use and not safe for concurrent use.
type ModuleResolver struct {
	ld      *loader
	modules map[string]*Module
	// order holds canonical identities in first-discovery order, which
	// fixes alias registration and IR output order.
	order    []string
	rootPath string
}

// NewModuleResolver returns a resolver for one resolution run.
func NewModuleResolver() *ModuleResolver {
	return newModuleResolver(newLoader(nil))
}

func newModuleResolver(ld *loader) *ModuleResolver {
	return &ModuleResolver{ld: ld, modules: make(map[string]*Module)}
}

// ResolveModules loads the module tree rooted at entry, resolves every
// use path against it, and lowers the whole tree to one validated IR
// set. The entry file becomes the unnamed root module.
func (r *ModuleResolver) ResolveModules(entry string) (ir.Set, error) {
	rootPath, err := r.loadModule(entry, "", "", 0)
	if err != nil {
		return nil, err
	}
	r.rootPath = rootPath
	for _, path := range r.order {
		mod := r.modules[path]
		for _, decl := range mod.File.Decls {
			use, ok := decl.(*ast.UseDecl)
			if !ok {
				continue
			}
			if err := r.resolveUse(mod, use); err != nil {
				return nil, err
			}
		}
	}
	aliases := NewAliasResolver()
	for _, path := range r.order {
		if err := aliases.AddFile(r.modules[path].File); err != nil {
			return nil, err
		}
	}
	if err := aliases.ResolveAll(); err != nil {
		return nil, err
	}
	var defs ir.Set
	for _, path := range r.order {
		mod := r.modules[path]
		fragment, err := Transform(mod.File, aliases, r.modulePath(mod))
		if err != nil {
			return nil, err
		}
		defs = append(defs, fragment...)
	}
	if err := ValidateDefs(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// loadModule loads one module file and recurses into its mod
// declarations. Each `mod name;` probes a sibling file named name, then
// a name/ subdirectory holding the directory entry file.
func (r *ModuleResolver) loadModule(path, name, parent string, depth int) (string, error) {
	if depth > MaxDepth {
		return "", &DepthError{What: "module", Limit: MaxDepth}
	}
	canon := canonicalPath(path)
	if r.ld.onStack(canon) {
		return "", &CircularModuleError{Chain: r.ld.cycleChain(canon)}
	}
	if _, ok := r.modules[canon]; ok {
		return canon, nil
	}
	file, canon, err := r.ld.load(path)
	if err != nil {
		return "", err
	}
	mod := &Module{
		Name:     name,
		Path:     canon,
		File:     file,
		Children: make(map[string]string),
		Parent:   parent,
	}
	r.modules[canon] = mod
	r.order = append(r.order, canon)
	r.ld.push(canon)
	defer r.ld.pop()
	dir := filepath.Dir(canon)
	for _, decl := range file.Decls {
		md, ok := decl.(*ast.ModDecl)
		if !ok {
			continue
		}
		sibling := filepath.Join(dir, md.Name+SchemaExt)
		dirEntry := filepath.Join(dir, md.Name, dirEntryFile)
		var target string
		switch {
		case r.ld.exists(sibling):
			target = sibling
		case r.ld.exists(dirEntry):
			target = dirEntry
		default:
			return "", &ModuleNotFoundError{Name: md.Name, Tried: []string{sibling, dirEntry}}
		}
		childPath, err := r.loadModule(target, md.Name, canon, depth+1)
		if err != nil {
			return "", err
		}
		mod.Children[md.Name] = childPath
	}
	return canon, nil
}

// resolveUse resolves one use path issued from mod. The first segment
// selects the starting module (crate, super, self, or a plain
// identifier consulting the child-module table first); remaining
// segments walk child modules; the final segment must name a type
// declared in the resolved module, public unless the resolved module is
// the issuing module itself.
func (r *ModuleResolver) resolveUse(mod *Module, use *ast.UseDecl) error {
	path := use.Path()
	segs := use.Segments
	for _, seg := range segs[1:] {
		if seg.Kind != ast.SegmentIdent {
			return &MalformedPathError{Path: path, Segment: seg.Kind.String()}
		}
	}
	cur := mod
	idx := 1
	switch segs[0].Kind {
	case ast.SegmentCrate:
		cur = r.modules[r.rootPath]
	case ast.SegmentSuper:
		if mod.Parent == "" {
			return &NoParentError{Path: path}
		}
		cur = r.modules[mod.Parent]
	case ast.SegmentSelf:
	default:
		idx = 0
	}
	if idx >= len(segs) {
		return &MalformedPathError{Path: path, Segment: segs[0].Kind.String()}
	}
	for _, seg := range segs[idx : len(segs)-1] {
		childPath, ok := cur.Children[seg.Name]
		if !ok {
			return &UnresolvedPathError{Path: path, Segment: seg.Name}
		}
		cur = r.modules[childPath]
	}
	name := segs[len(segs)-1].Name
	public, ok := findTypeDecl(cur.File, name)
	if !ok {
		return &UnresolvedTypeError{Name: name, Module: r.moduleDisplayName(cur)}
	}
	if cur.Path != mod.Path && !public {
		return &PrivacyError{Name: name, Module: r.moduleDisplayName(cur)}
	}
	return nil
}

// findTypeDecl looks name up among the module's type declarations and
// reports its visibility.
func findTypeDecl(file *ast.File, name string) (public, ok bool) {
	for _, d := range file.Decls {
		switch d := d.(type) {
		case *ast.RecordDecl:
			if d.Name == name {
				return d.Public, true
			}
		case *ast.VariantDecl:
			if d.Name == name {
				return d.Public, true
			}
		case *ast.AliasDecl:
			if d.Name == name {
				return d.Public, true
			}
		}
	}
	return false, false
}

// modulePath returns the ordered list of enclosing module names, empty
// for the root.
func (r *ModuleResolver) modulePath(mod *Module) []string {
	var names []string
	for mod != nil && mod.Parent != "" {
		names = append(names, mod.Name)
		mod = r.modules[mod.Parent]
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

func (r *ModuleResolver) moduleDisplayName(mod *Module) string {
	path := r.modulePath(mod)
	if len(path) == 0 {
		return "crate"
	}
	return strings.Join(path, "::")
}

// Root returns the root module of the resolved tree, or nil before
// ResolveModules has run.
func (r *ModuleResolver) Root() *Module {
	return r.modules[r.rootPath]
}

// Module returns the module with the given canonical identity, or nil.
func (r *ModuleResolver) Module(path string) *Module {
	return r.modules[path]
}

// LoadedFiles returns the canonical identities of every loaded file in
// first-discovery order.
func (r *ModuleResolver) LoadedFiles() []string {
	return r.ld.loadedFiles()
}
