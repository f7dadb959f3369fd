// Package parser implements the lexer and recursive-descent parser for
// lumos schema files. It produces the syntax model defined in schema/ast;
// all cross-file and cross-type resolution happens later, in
// compiler/resolve.
package parser

import (
	"fmt"
	"os"
	"strconv"

	"github.com/getlumos/lumos/schema/ast"
)

// SyntaxError reports a malformed construct with its source position.
type SyntaxError struct {
	Path string
	Line int
	Col  int
	Msg  string
}

// Error returns the error string.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}

// ParseFile reads and parses the schema file at path.
func ParseFile(path string) (*ast.File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parser: reading %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse parses src into a syntax tree. path is used for error reporting
// only; for in-memory sources it may be a virtual path.
func Parse(src []byte, path string) (*ast.File, error) {
	p := &parser{lex: newLexer(src, path), path: path}
	if err := p.bump(); err != nil {
		return nil, err
	}
	file := &ast.File{Path: path}
	for p.tok.kind != tokEOF {
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		file.Decls = append(file.Decls, decl)
	}
	return file, nil
}

type parser struct {
	lex  *lexer
	path string
	tok  token
}

func (p *parser) bump() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{
		Path: p.path,
		Line: p.tok.line,
		Col:  p.tok.col,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (p *parser) expect(kind tokenKind) (token, error) {
	if p.tok.kind != kind {
		return token{}, p.errorf("expected %s, found %s", kind, p.describe())
	}
	tok := p.tok
	if err := p.bump(); err != nil {
		return token{}, err
	}
	return tok, nil
}

func (p *parser) describe() string {
	if p.tok.kind == tokIdent || p.tok.kind == tokInt {
		return fmt.Sprintf("%q", p.tok.lit)
	}
	return p.tok.kind.String()
}

// accept consumes the current token if it is an identifier with the
// given spelling.
func (p *parser) accept(keyword string) (bool, error) {
	if p.tok.kind != tokIdent || p.tok.lit != keyword {
		return false, nil
	}
	return true, p.bump()
}

func (p *parser) parseDecl() (ast.Decl, error) {
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	pub, err := p.accept("pub")
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected declaration, found %s", p.describe())
	}
	switch p.tok.lit {
	case "record":
		return p.parseRecord(attrs, pub)
	case "variant":
		return p.parseVariant(attrs, pub)
	case "type":
		return p.parseAlias(attrs, pub)
	case "mod":
		return p.parseMod(attrs, pub)
	case "use":
		return p.parseUse(attrs, pub)
	case "import":
		return p.parseImport(attrs, pub)
	}
	return nil, p.errorf("expected declaration keyword, found %q", p.tok.lit)
}

// parseAttributes parses zero or more #[name] or #[name(arg, ...)]
// markers. Arguments may be identifiers, string literals, or integers;
// they are kept as uninterpreted strings.
func (p *parser) parseAttributes() ([]ast.Attribute, error) {
	var attrs []ast.Attribute
	for p.tok.kind == tokHash {
		if err := p.bump(); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokLBracket); err != nil {
			return nil, err
		}
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		attr := ast.Attribute{Name: name.lit}
		if p.tok.kind == tokLParen {
			if err := p.bump(); err != nil {
				return nil, err
			}
			for p.tok.kind != tokRParen {
				switch p.tok.kind {
				case tokIdent, tokString, tokInt:
					attr.Args = append(attr.Args, p.tok.lit)
					if err := p.bump(); err != nil {
						return nil, err
					}
				default:
					return nil, p.errorf("expected attribute argument, found %s", p.describe())
				}
				if p.tok.kind == tokComma {
					if err := p.bump(); err != nil {
						return nil, err
					}
				}
			}
			if err := p.bump(); err != nil { // ')'
				return nil, err
			}
		}
		if _, err := p.expect(tokRBracket); err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *parser) parseRecord(attrs []ast.Attribute, pub bool) (ast.Decl, error) {
	if err := p.bump(); err != nil { // 'record'
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	params, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var fields []*ast.Field
	for p.tok.kind != tokRBrace {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := p.bump(); err != nil { // '}'
		return nil, err
	}
	return &ast.RecordDecl{
		Name:       name.lit,
		TypeParams: params,
		Fields:     fields,
		Attrs:      attrs,
		Public:     pub,
	}, nil
}

// parseField parses `name: type;`, `name?: type;` and leading field
// attributes.
func (p *parser) parseField() (*ast.Field, error) {
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	optional := false
	if p.tok.kind == tokQuestion {
		optional = true
		if err := p.bump(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokColon); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return &ast.Field{Name: name.lit, Type: typ, Optional: optional, Attrs: attrs}, nil
}

func (p *parser) parseVariant(attrs []ast.Attribute, pub bool) (ast.Decl, error) {
	if err := p.bump(); err != nil { // 'variant'
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	params, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var cases []*ast.VariantCase
	for p.tok.kind != tokRBrace {
		c, err := p.parseVariantCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
		if p.tok.kind == tokComma {
			if err := p.bump(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.bump(); err != nil { // '}'
		return nil, err
	}
	if len(cases) == 0 {
		return nil, p.errorf("variant %q has no cases", name.lit)
	}
	return &ast.VariantDecl{
		Name:       name.lit,
		TypeParams: params,
		Cases:      cases,
		Attrs:      attrs,
		Public:     pub,
	}, nil
}

// parseVariantCase parses `Name` or `Name { field: type, ... }`.
// Case fields are comma-separated, unlike record fields.
func (p *parser) parseVariantCase() (*ast.VariantCase, error) {
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	c := &ast.VariantCase{Name: name.lit}
	if p.tok.kind != tokLBrace {
		return c, nil
	}
	if err := p.bump(); err != nil { // '{'
		return nil, err
	}
	for p.tok.kind != tokRBrace {
		attrs, err := p.parseAttributes()
		if err != nil {
			return nil, err
		}
		fname, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		optional := false
		if p.tok.kind == tokQuestion {
			optional = true
			if err := p.bump(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		c.Fields = append(c.Fields, &ast.Field{Name: fname.lit, Type: typ, Optional: optional, Attrs: attrs})
		if p.tok.kind == tokComma {
			if err := p.bump(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.bump(); err != nil { // '}'
		return nil, err
	}
	return c, nil
}

func (p *parser) parseTypeParams() ([]string, error) {
	if p.tok.kind != tokLAngle {
		return nil, nil
	}
	if err := p.bump(); err != nil {
		return nil, err
	}
	var params []string
	for {
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, name.lit)
		if p.tok.kind == tokComma {
			if err := p.bump(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokRAngle); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) parseAlias(attrs []ast.Attribute, pub bool) (ast.Decl, error) {
	if len(attrs) > 0 {
		return nil, p.errorf("type aliases do not take attributes")
	}
	if err := p.bump(); err != nil { // 'type'
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokAssign); err != nil {
		return nil, err
	}
	target, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return &ast.AliasDecl{Name: name.lit, Target: target, Public: pub}, nil
}

func (p *parser) parseMod(attrs []ast.Attribute, pub bool) (ast.Decl, error) {
	if len(attrs) > 0 || pub {
		return nil, p.errorf("mod declarations take no attributes or visibility")
	}
	if err := p.bump(); err != nil { // 'mod'
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return &ast.ModDecl{Name: name.lit}, nil
}

func (p *parser) parseUse(attrs []ast.Attribute, pub bool) (ast.Decl, error) {
	if len(attrs) > 0 || pub {
		return nil, p.errorf("use declarations take no attributes or visibility")
	}
	if err := p.bump(); err != nil { // 'use'
		return nil, err
	}
	var segs []ast.PathSegment
	for {
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		seg := ast.PathSegment{Kind: ast.SegmentIdent, Name: name.lit}
		switch name.lit {
		case "crate":
			seg = ast.PathSegment{Kind: ast.SegmentCrate}
		case "super":
			seg = ast.PathSegment{Kind: ast.SegmentSuper}
		case "self":
			seg = ast.PathSegment{Kind: ast.SegmentSelf}
		}
		segs = append(segs, seg)
		if p.tok.kind == tokPathSep {
			if err := p.bump(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return &ast.UseDecl{Segments: segs}, nil
}

func (p *parser) parseImport(attrs []ast.Attribute, pub bool) (ast.Decl, error) {
	if len(attrs) > 0 || pub {
		return nil, p.errorf("import declarations take no attributes or visibility")
	}
	if err := p.bump(); err != nil { // 'import'
		return nil, err
	}
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var names []string
	for p.tok.kind != tokRBrace {
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		names = append(names, name.lit)
		if p.tok.kind == tokComma {
			if err := p.bump(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.bump(); err != nil { // '}'
		return nil, err
	}
	if len(names) == 0 {
		return nil, p.errorf("import clause names no types")
	}
	if ok, err := p.accept("from"); err != nil {
		return nil, err
	} else if !ok {
		return nil, p.errorf("expected \"from\", found %s", p.describe())
	}
	from, err := p.expect(tokString)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return &ast.ImportDecl{Names: names, From: from.lit}, nil
}

// parseTypeRef parses `[]T`, `[T; N]`, a primitive name, or a named
// reference.
func (p *parser) parseTypeRef() (ast.TypeRef, error) {
	if p.tok.kind == tokLBracket {
		if err := p.bump(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokRBracket {
			if err := p.bump(); err != nil {
				return nil, err
			}
			elem, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			return &ast.VecRef{Elem: elem}, nil
		}
		elem, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemi); err != nil {
			return nil, err
		}
		lenTok, err := p.expect(tokInt)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(lenTok.lit)
		if err != nil || n < 0 {
			return nil, p.errorf("invalid array length %q", lenTok.lit)
		}
		if _, err := p.expect(tokRBracket); err != nil {
			return nil, err
		}
		return &ast.ArrayRef{Elem: elem, Len: n}, nil
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if ast.IsPrimitive(name.lit) {
		return &ast.PrimitiveRef{Name: name.lit}, nil
	}
	return &ast.NamedRef{Name: name.lit}, nil
}
