// Package ast defines the syntax model for parsed lumos schema files.
//
// The types here are passive data produced by the parser and consumed by
// the resolution engine. They carry no resolution state: a NamedRef may
// turn out to be an alias, a user-defined type, or an error, and nothing
// in this package can tell the difference.
package ast

// File is the parsed form of a single schema source file.
type File struct {
	// Path is the path the file was parsed from. For in-memory sources
	// it is the virtual path supplied by the caller.
	Path string
	// Decls holds the top-level declarations in source order.
	Decls []Decl
}

// HasModDecls reports whether the file declares any child modules.
// It drives the resolution-strategy selection: a file with mod
// declarations is resolved as a hierarchical module tree.
func (f *File) HasModDecls() bool {
	for _, d := range f.Decls {
		if _, ok := d.(*ModDecl); ok {
			return true
		}
	}
	return false
}

// HasImportDecls reports whether the file contains any flat import clauses.
func (f *File) HasImportDecls() bool {
	for _, d := range f.Decls {
		if _, ok := d.(*ImportDecl); ok {
			return true
		}
	}
	return false
}

// Decl is a top-level declaration in a schema file.
type Decl interface {
	decl()
}

// Attribute is an uninterpreted #[name] or #[name(arg, ...)] marker
// attached to a declaration or a field. The resolution engine copies
// attributes into IR metadata without assigning them semantics.
type Attribute struct {
	Name string
	Args []string
}

// Field is a single named field of a record or of a variant case.
type Field struct {
	Name string
	Type TypeRef
	// Optional marks fields declared with the `name?: type` form.
	Optional bool
	Attrs    []Attribute
}

// RecordDecl declares a record (product) type.
type RecordDecl struct {
	Name       string
	TypeParams []string
	Fields     []*Field
	Attrs      []Attribute
	Public     bool
}

// VariantCase is one case of a variant declaration. A case may carry
// named fields or be a bare tag.
type VariantCase struct {
	Name   string
	Fields []*Field
}

// VariantDecl declares a variant (tagged-union) type. The parser
// guarantees Cases is non-empty.
type VariantDecl struct {
	Name       string
	TypeParams []string
	Cases      []*VariantCase
	Attrs      []Attribute
	Public     bool
}

// AliasDecl declares a named synonym: `type Name = Target;`.
type AliasDecl struct {
	Name   string
	Target TypeRef
	Public bool
}

// ModDecl declares a child module backed by a sibling file or directory.
type ModDecl struct {
	Name string
}

// SegmentKind classifies one segment of a use path.
type SegmentKind uint8

const (
	// SegmentIdent is a plain identifier segment.
	SegmentIdent SegmentKind = iota
	// SegmentCrate anchors the path at the root module.
	SegmentCrate
	// SegmentSuper anchors the path at the parent module.
	SegmentSuper
	// SegmentSelf anchors the path at the current module.
	SegmentSelf
)

// String returns the source spelling of the segment kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentCrate:
		return "crate"
	case SegmentSuper:
		return "super"
	case SegmentSelf:
		return "self"
	default:
		return "ident"
	}
}

// PathSegment is one `::`-separated segment of a use path. Name is
// empty for anchor segments.
type PathSegment struct {
	Kind SegmentKind
	Name string
}

// UseDecl brings a type from another module into scope:
// `use crate::models::Account;`. Anchor legality (crate/super/self only
// in first position) is checked by the module resolver, not the parser.
type UseDecl struct {
	Segments []PathSegment
}

// Path returns the source spelling of the use path, e.g. "crate::a::B".
func (u *UseDecl) Path() string {
	s := ""
	for i, seg := range u.Segments {
		if i > 0 {
			s += "::"
		}
		if seg.Kind == SegmentIdent {
			s += seg.Name
		} else {
			s += seg.Kind.String()
		}
	}
	return s
}

// ImportDecl is a flat import clause: `import { A, B } from "./path";`.
type ImportDecl struct {
	Names []string
	From  string
}

func (*RecordDecl) decl()  {}
func (*VariantDecl) decl() {}
func (*AliasDecl) decl()   {}
func (*ModDecl) decl()     {}
func (*UseDecl) decl()     {}
func (*ImportDecl) decl()  {}

// TypeRef is a syntax-level type reference. It is pre-resolution data:
// a NamedRef is indistinguishable from an alias until the alias resolver
// has run.
type TypeRef interface {
	typeRef()
}

// PrimitiveRef references a built-in primitive by name. The parser
// classifies well-known synonyms (number, boolean) as primitives too;
// normalization to canonical names happens during resolution.
type PrimitiveRef struct {
	Name string
}

// NamedRef references a type by name. The name may be an alias, a
// user-defined type, or undefined.
type NamedRef struct {
	Name string
}

// VecRef is a dynamic sequence of Elem: `[]T`.
type VecRef struct {
	Elem TypeRef
}

// ArrayRef is a fixed-size sequence of Elem: `[T; N]`.
type ArrayRef struct {
	Elem TypeRef
	Len  int
}

func (*PrimitiveRef) typeRef() {}
func (*NamedRef) typeRef()     {}
func (*VecRef) typeRef()       {}
func (*ArrayRef) typeRef()     {}

// primitives is the set of built-in primitive type names, including the
// language-agnostic synonyms accepted in source.
var primitives = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"f32": true, "f64": true,
	"bool": true, "string": true, "bytes": true, "pubkey": true,
	// synonyms, normalized during resolution
	"number": true, "boolean": true,
}

// IsPrimitive reports whether name is a built-in primitive or one of
// its accepted synonyms.
func IsPrimitive(name string) bool {
	return primitives[name]
}
