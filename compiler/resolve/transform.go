package resolve

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/getlumos/lumos/schema/ast"
	"github.com/getlumos/lumos/schema/ir"
)

// Transform lowers one file's declarations into IR definitions using
// the already-resolved alias table. modulePath is the ordered list of
// enclosing module names, nil for the root module and for flat-import
// resolution. Mod, use, and import declarations are consumed by the
// graph resolvers and produce no IR.
func Transform(file *ast.File, aliases *AliasResolver, modulePath []string) (ir.Set, error) {
	var defs ir.Set
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.RecordDecl:
			def, err := transformRecord(decl, aliases, modulePath)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		case *ast.VariantDecl:
			def, err := transformVariant(decl, aliases, modulePath)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		case *ast.AliasDecl:
			target, ok := aliases.Resolved(decl.Name)
			if !ok {
				// Aliases are resolved before any file is lowered.
				return nil, &MetadataError{Type: decl.Name, Reason: "alias was not resolved"}
			}
			defs = append(defs, &ir.Def{
				Kind:       ir.DefAlias,
				Name:       decl.Name,
				Alias:      &target,
				Public:     decl.Public,
				ModulePath: modulePath,
			})
		}
	}
	return defs, nil
}

func transformRecord(decl *ast.RecordDecl, aliases *AliasResolver, modulePath []string) (*ir.Def, error) {
	meta, err := buildMetadata(decl.Name, decl.Attrs)
	if err != nil {
		return nil, err
	}
	fields, err := transformFields(decl.Fields, decl.TypeParams, aliases)
	if err != nil {
		return nil, err
	}
	return &ir.Def{
		Kind:       ir.DefRecord,
		Name:       decl.Name,
		TypeParams: decl.TypeParams,
		Fields:     fields,
		Meta:       meta,
		Public:     decl.Public,
		ModulePath: modulePath,
	}, nil
}

func transformVariant(decl *ast.VariantDecl, aliases *AliasResolver, modulePath []string) (*ir.Def, error) {
	meta, err := buildMetadata(decl.Name, decl.Attrs)
	if err != nil {
		return nil, err
	}
	variants := make([]ir.Variant, 0, len(decl.Cases))
	for _, c := range decl.Cases {
		fields, err := transformFields(c.Fields, decl.TypeParams, aliases)
		if err != nil {
			return nil, err
		}
		variants = append(variants, ir.Variant{Name: c.Name, Fields: fields})
	}
	return &ir.Def{
		Kind:       ir.DefVariant,
		Name:       decl.Name,
		TypeParams: decl.TypeParams,
		Variants:   variants,
		Meta:       meta,
		Public:     decl.Public,
		ModulePath: modulePath,
	}, nil
}

func transformFields(in []*ast.Field, typeParams []string, aliases *AliasResolver) ([]ir.Field, error) {
	params := make(map[string]bool, len(typeParams))
	for _, p := range typeParams {
		params[p] = true
	}
	fields := make([]ir.Field, 0, len(in))
	for _, f := range in {
		t, err := convertRef(f.Type, params, aliases)
		if err != nil {
			return nil, err
		}
		if f.Optional && t.Kind != ir.KindOption {
			t = ir.Option(t)
		}
		out := ir.Field{Name: f.Name, Type: t}
		for _, attr := range f.Attrs {
			if attr.Name == "deprecated" {
				out.Deprecated = true
				if len(attr.Args) > 0 {
					out.DeprecatedReason = attr.Args[0]
				}
			}
		}
		fields = append(fields, out)
	}
	return fields, nil
}

// convertRef lowers a field's type reference, mapping names that match
// an enclosing type parameter to generic references before consulting
// the alias table.
func convertRef(ref ast.TypeRef, params map[string]bool, aliases *AliasResolver) (ir.Type, error) {
	switch ref := ref.(type) {
	case *ast.NamedRef:
		if params[ref.Name] {
			return ir.Generic(ref.Name), nil
		}
		return aliases.ConvertRef(ref)
	case *ast.VecRef:
		elem, err := convertRef(ref.Elem, params, aliases)
		if err != nil {
			return ir.Type{}, err
		}
		return ir.Vec(elem), nil
	case *ast.ArrayRef:
		elem, err := convertRef(ref.Elem, params, aliases)
		if err != nil {
			return ir.Type{}, err
		}
		return ir.Array(elem, ref.Len), nil
	default:
		return aliases.ConvertRef(ref)
	}
}

// buildMetadata copies declaration attributes into IR metadata without
// interpreting their semantics. The only shape check is on version
// strings, which must be valid semantic versions.
func buildMetadata(typeName string, attrs []ast.Attribute) (ir.Metadata, error) {
	var meta ir.Metadata
	for _, attr := range attrs {
		switch attr.Name {
		case "solana":
			meta.Solana = true
		case "version":
			if len(attr.Args) != 1 {
				return ir.Metadata{}, &MetadataError{Type: typeName, Reason: "version takes exactly one argument"}
			}
			v := attr.Args[0]
			if !semver.IsValid(canonicalSemver(v)) {
				return ir.Metadata{}, &MetadataError{Type: typeName, Reason: fmt.Sprintf("invalid semantic version %q", v)}
			}
			meta.Version = v
		case "derive":
			meta.Derives = append(meta.Derives, attr.Args...)
		default:
			meta.Attributes = append(meta.Attributes, attr.Name)
		}
	}
	return meta, nil
}

func canonicalSemver(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
