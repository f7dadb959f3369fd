// Package ir defines the canonical intermediate representation produced
// by the resolution engine.
//
// Every downstream tool (code generators, compatibility checker,
// migration generator, language server) consumes the types in this
// package and nothing deeper. An ir.Type never contains an unresolved
// alias name: the resolver substitutes every alias by its target before
// lowering.
package ir

import (
	"fmt"
	"strings"
)

// TypeKind discriminates the canonical type forms.
type TypeKind uint8

const (
	// KindPrimitive is a built-in scalar type (u64, string, pubkey, ...).
	KindPrimitive TypeKind = iota
	// KindGeneric is a reference to an enclosing definition's type parameter.
	KindGeneric
	// KindDefined is a reference to a user-defined type by name. The
	// validator guarantees the name exists in the resolved set.
	KindDefined
	// KindVec is a dynamic sequence.
	KindVec
	// KindArray is a fixed-size sequence.
	KindArray
	// KindOption wraps a type that may be absent.
	KindOption
)

// String returns a human-readable kind name.
func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindGeneric:
		return "generic"
	case KindDefined:
		return "defined"
	case KindVec:
		return "vec"
	case KindArray:
		return "array"
	case KindOption:
		return "option"
	default:
		return "unknown"
	}
}

// Type is a canonical, fully resolved type.
type Type struct {
	Kind TypeKind `msgpack:"kind"`
	// Name is the primitive name, generic parameter name, or defined
	// type name. Empty for sequence and option forms.
	Name string `msgpack:"name,omitempty"`
	// Elem is the element type of vec, array, and option forms.
	Elem *Type `msgpack:"elem,omitempty"`
	// Len is the length of a fixed array.
	Len int `msgpack:"len,omitempty"`
}

// Primitive returns the canonical primitive type named name.
func Primitive(name string) Type { return Type{Kind: KindPrimitive, Name: name} }

// Generic returns a reference to the type parameter named name.
func Generic(name string) Type { return Type{Kind: KindGeneric, Name: name} }

// Defined returns a reference to the user-defined type named name.
func Defined(name string) Type { return Type{Kind: KindDefined, Name: name} }

// Vec returns a dynamic sequence of elem.
func Vec(elem Type) Type { return Type{Kind: KindVec, Elem: &elem} }

// Array returns a fixed sequence of n elems.
func Array(elem Type, n int) Type { return Type{Kind: KindArray, Elem: &elem, Len: n} }

// Option wraps elem in the optional wrapper.
func Option(elem Type) Type { return Type{Kind: KindOption, Elem: &elem} }

// String renders the type in source-like notation.
func (t Type) String() string {
	switch t.Kind {
	case KindVec:
		return "[]" + t.Elem.String()
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Len)
	case KindOption:
		return t.Elem.String() + "?"
	default:
		return t.Name
	}
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Name != o.Name || t.Len != o.Len {
		return false
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	if t.Elem != nil {
		return t.Elem.Equal(*o.Elem)
	}
	return true
}

// synonyms maps language-agnostic spellings accepted in source to
// canonical primitive names.
var synonyms = map[string]string{
	"number":  "u64",
	"boolean": "bool",
	"string":  "string",
}

// NormalizePrimitive maps a source primitive spelling to its canonical
// name, resolving well-known synonyms.
func NormalizePrimitive(name string) string {
	if canonical, ok := synonyms[name]; ok {
		return canonical
	}
	return name
}

// DefKind discriminates type definitions.
type DefKind uint8

const (
	// DefRecord is a product type with named fields.
	DefRecord DefKind = iota
	// DefVariant is a tagged union.
	DefVariant
	// DefAlias is a named synonym retained in the IR for documentation
	// and migration tooling; its target is fully canonical.
	DefAlias
)

// String returns the definition kind name.
func (k DefKind) String() string {
	switch k {
	case DefRecord:
		return "record"
	case DefVariant:
		return "variant"
	case DefAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// Metadata carries the uninterpreted declaration attributes. The
// resolver populates it without assigning semantics; downstream
// generators decide what each flag means for their target.
type Metadata struct {
	// Solana marks definitions tagged #[solana].
	Solana bool `msgpack:"solana,omitempty"`
	// Attributes holds the names of attributes with no dedicated slot.
	Attributes []string `msgpack:"attributes,omitempty"`
	// Version is the semantic version string from #[version("...")].
	Version string `msgpack:"version,omitempty"`
	// Derives holds the names from #[derive(...)].
	Derives []string `msgpack:"derives,omitempty"`
}

// Field is one field of a record or variant case.
type Field struct {
	Name             string `msgpack:"name"`
	Type             Type   `msgpack:"type"`
	Deprecated       bool   `msgpack:"deprecated,omitempty"`
	DeprecatedReason string `msgpack:"deprecated_reason,omitempty"`
}

// Variant is one case of a tagged union.
type Variant struct {
	Name   string  `msgpack:"name"`
	Fields []Field `msgpack:"fields,omitempty"`
}

// Def is one resolved type definition.
type Def struct {
	Kind       DefKind  `msgpack:"kind"`
	Name       string   `msgpack:"name"`
	TypeParams []string `msgpack:"type_params,omitempty"`
	// Fields is set for records.
	Fields []Field `msgpack:"fields,omitempty"`
	// Variants is set for tagged unions.
	Variants []Variant `msgpack:"variants,omitempty"`
	// Alias is the canonical target of an alias definition.
	Alias *Type `msgpack:"alias,omitempty"`
	Meta  Metadata `msgpack:"meta"`
	// Public reports whether the definition is visible outside its module.
	Public bool `msgpack:"public,omitempty"`
	// ModulePath is the ordered list of enclosing module names, empty
	// for definitions in the root module.
	ModulePath []string `msgpack:"module_path,omitempty"`
}

// QualifiedName returns the module-qualified name, e.g. "models::Account".
func (d *Def) QualifiedName() string {
	if len(d.ModulePath) == 0 {
		return d.Name
	}
	return strings.Join(d.ModulePath, "::") + "::" + d.Name
}

// Set is an ordered sequence of resolved definitions. Order is the
// deterministic discovery order of one resolution run.
type Set []*Def

// Lookup returns the definition named name, or nil.
func (s Set) Lookup(name string) *Def {
	for _, d := range s {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Names returns the definition names in set order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name
	}
	return names
}
