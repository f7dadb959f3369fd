package resolve

import (
	"fmt"

	"github.com/getlumos/lumos/schema/ast"
	"github.com/getlumos/lumos/schema/ir"
)

// MaxDepth bounds alias and module nesting. The reference behavior left
// pathologically deep chains to the host call stack; we fail with a
// DepthError instead.
const MaxDepth = 256

// AliasResolver resolves `type X = <type-expr>;` declarations into
// canonical types, detecting cycles. Aliases registered from every file
// of one resolution run share a single resolver, so aliases are visible
// across files.
type AliasResolver struct {
	unresolved map[string]ast.TypeRef
	resolved   map[string]ir.Type
	inProgress map[string]bool
	// names preserves registration order so ResolveAll and cycle chains
	// are deterministic.
	names []string
}

// NewAliasResolver returns an empty resolver.
func NewAliasResolver() *AliasResolver {
	return &AliasResolver{
		unresolved: make(map[string]ast.TypeRef),
		resolved:   make(map[string]ir.Type),
		inProgress: make(map[string]bool),
	}
}

// AddAlias registers one alias. Registering a name twice is a
// definition error.
func (r *AliasResolver) AddAlias(name string, target ast.TypeRef) error {
	if _, ok := r.unresolved[name]; ok {
		return &DuplicateAliasError{Name: name}
	}
	if _, ok := r.resolved[name]; ok {
		return &DuplicateAliasError{Name: name}
	}
	r.unresolved[name] = target
	r.names = append(r.names, name)
	return nil
}

// AddFile registers every alias declaration of file.
func (r *AliasResolver) AddFile(file *ast.File) error {
	for _, d := range file.Decls {
		if alias, ok := d.(*ast.AliasDecl); ok {
			if err := r.AddAlias(alias.Name, alias.Target); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResolveAll resolves every registered alias, failing on the first
// cycle found.
func (r *AliasResolver) ResolveAll() error {
	for _, name := range r.names {
		if _, err := r.resolveName(name, nil, 0); err != nil {
			return err
		}
	}
	return nil
}

// Resolved returns the canonical type of name after ResolveAll.
func (r *AliasResolver) Resolved(name string) (ir.Type, bool) {
	t, ok := r.resolved[name]
	return t, ok
}

// IsAlias reports whether name is a registered alias.
func (r *AliasResolver) IsAlias(name string) bool {
	if _, ok := r.unresolved[name]; ok {
		return true
	}
	_, ok := r.resolved[name]
	return ok
}

// ConvertRef lowers a syntax-level reference to its canonical type:
// primitive synonyms are normalized, aliases substituted by their
// targets, and named non-primitive non-alias references become
// user-defined placeholders for the validator to check.
func (r *AliasResolver) ConvertRef(ref ast.TypeRef) (ir.Type, error) {
	return r.resolveRef(ref, nil, 0)
}

func (r *AliasResolver) resolveName(name string, chain []string, depth int) (ir.Type, error) {
	if depth > MaxDepth {
		return ir.Type{}, &DepthError{What: "type alias", Limit: MaxDepth}
	}
	if ast.IsPrimitive(name) {
		return ir.Primitive(ir.NormalizePrimitive(name)), nil
	}
	if t, ok := r.resolved[name]; ok {
		return t, nil
	}
	if r.inProgress[name] {
		return ir.Type{}, &AliasCycleError{Chain: append(append([]string{}, chain...), name)}
	}
	target, ok := r.unresolved[name]
	if !ok {
		// Not an alias: a user-defined type reference, validated later
		// against the merged IR set.
		return ir.Defined(name), nil
	}
	r.inProgress[name] = true
	t, err := r.resolveRef(target, append(chain, name), depth+1)
	delete(r.inProgress, name)
	if err != nil {
		return ir.Type{}, err
	}
	r.resolved[name] = t
	delete(r.unresolved, name)
	return t, nil
}

func (r *AliasResolver) resolveRef(ref ast.TypeRef, chain []string, depth int) (ir.Type, error) {
	switch ref := ref.(type) {
	case *ast.PrimitiveRef:
		return ir.Primitive(ir.NormalizePrimitive(ref.Name)), nil
	case *ast.NamedRef:
		return r.resolveName(ref.Name, chain, depth)
	case *ast.VecRef:
		elem, err := r.resolveRef(ref.Elem, chain, depth)
		if err != nil {
			return ir.Type{}, err
		}
		return ir.Vec(elem), nil
	case *ast.ArrayRef:
		elem, err := r.resolveRef(ref.Elem, chain, depth)
		if err != nil {
			return ir.Type{}, err
		}
		return ir.Array(elem, ref.Len), nil
	default:
		panic(fmt.Sprintf("resolve: unknown type reference %T", ref))
	}
}
