// Package gen emits Go data types from a resolved IR set. It is the
// first downstream consumer of the resolution engine and touches only
// the public IR shape, never resolver internals.
package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"

	"github.com/getlumos/lumos/schema/ir"
)

// Generator renders one Go source file per type definition, plus a
// shared runtime file for the pubkey primitive when it is used.
type Generator struct {
	defs    ir.Set
	outDir  string
	pkg     string
	workers int
}

// NewGenerator returns a generator writing into outDir. The output
// package name defaults to the directory base name.
func NewGenerator(defs ir.Set, outDir string) *Generator {
	return &Generator{
		defs:    defs,
		outDir:  outDir,
		pkg:     filepath.Base(outDir),
		workers: runtime.GOMAXPROCS(0),
	}
}

// WithPackage sets the output package name.
func (g *Generator) WithPackage(pkg string) *Generator {
	if pkg != "" {
		g.pkg = pkg
	}
	return g
}

// WithWorkers sets the number of parallel emit workers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Generate writes every definition. Definitions are emitted in
// parallel; each definition gets its own file, so workers never share
// an output.
func (g *Generator) Generate(ctx context.Context) error {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return fmt.Errorf("gen: creating output directory: %w", err)
	}
	if g.usesPubkey() {
		if err := g.emitRuntime(); err != nil {
			return err
		}
	}
	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers)
	for _, def := range g.defs {
		def := def
		grp.Go(func() error {
			return g.emitDef(def)
		})
	}
	return grp.Wait()
}

func (g *Generator) usesPubkey() bool {
	var uses func(t ir.Type) bool
	uses = func(t ir.Type) bool {
		switch t.Kind {
		case ir.KindPrimitive:
			return t.Name == "pubkey"
		case ir.KindVec, ir.KindArray, ir.KindOption:
			return uses(*t.Elem)
		}
		return false
	}
	for _, def := range g.defs {
		for _, f := range def.Fields {
			if uses(f.Type) {
				return true
			}
		}
		for _, v := range def.Variants {
			for _, f := range v.Fields {
				if uses(f.Type) {
					return true
				}
			}
		}
		if def.Alias != nil && uses(*def.Alias) {
			return true
		}
	}
	return false
}

func (g *Generator) emitRuntime() error {
	f := g.newFile()
	f.Comment("Pubkey is a 32-byte account address.")
	f.Type().Id("Pubkey").Op("=").Index(jen.Lit(32)).Byte()
	return g.save(f, "lumos_runtime.go")
}

func (g *Generator) emitDef(def *ir.Def) error {
	f := g.newFile()
	switch def.Kind {
	case ir.DefRecord:
		g.emitRecord(f, def)
	case ir.DefVariant:
		g.emitVariant(f, def)
	case ir.DefAlias:
		f.Commentf("%s is an alias for %s.", def.Name, def.Alias.String())
		f.Type().Id(def.Name).Op("=").Add(goType(*def.Alias))
	}
	return g.save(f, inflect.Underscore(def.Name)+".go")
}

func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.pkg)
	f.HeaderComment("Code generated by lumos. DO NOT EDIT.")
	return f
}

func (g *Generator) save(f *jen.File, name string) error {
	if err := f.Save(filepath.Join(g.outDir, name)); err != nil {
		return fmt.Errorf("gen: writing %s: %w", name, err)
	}
	return nil
}

func (g *Generator) emitRecord(f *jen.File, def *ir.Def) {
	if v := def.Meta.Version; v != "" {
		f.Commentf("%s (schema version %s).", def.Name, v)
	} else {
		f.Commentf("%s is generated from the %s record schema.", def.Name, def.Name)
	}
	stmt := f.Type().Id(def.Name)
	addTypeParams(stmt, def)
	stmt.StructFunc(func(s *jen.Group) {
		emitFields(s, def.Fields)
	})
}

func (g *Generator) emitVariant(f *jen.File, def *ir.Def) {
	marker := "is" + def.Name
	f.Commentf("%s is a tagged union; exactly one case struct implements it.", def.Name)
	stmt := f.Type().Id(def.Name)
	addTypeParams(stmt, def)
	stmt.Interface(jen.Id(marker).Params())
	for _, v := range def.Variants {
		caseName := def.Name + inflect.Camelize(v.Name)
		f.Commentf("%s is the %q case of %s.", caseName, v.Name, def.Name)
		cs := f.Type().Id(caseName)
		addTypeParams(cs, def)
		cs.StructFunc(func(s *jen.Group) {
			emitFields(s, v.Fields)
		})
		f.Func().Params(receiver(caseName, def)).Id(marker).Params().Block()
	}
}

func emitFields(s *jen.Group, fields []ir.Field) {
	for _, field := range fields {
		stmt := s.Id(inflect.Camelize(field.Name)).Add(goType(field.Type)).
			Tag(map[string]string{"json": field.Name})
		if field.Deprecated {
			reason := field.DeprecatedReason
			if reason == "" {
				reason = "marked deprecated in the schema"
			}
			stmt.Comment("Deprecated: " + reason)
		}
	}
}

func addTypeParams(stmt *jen.Statement, def *ir.Def) {
	if len(def.TypeParams) == 0 {
		return
	}
	params := make([]jen.Code, len(def.TypeParams))
	for i, name := range def.TypeParams {
		params[i] = jen.Id(name).Any()
	}
	stmt.Types(params...)
}

// receiver builds the marker-method receiver, instantiating the case
// struct's type parameters when the union is generic.
func receiver(caseName string, def *ir.Def) jen.Code {
	if len(def.TypeParams) == 0 {
		return jen.Id(caseName)
	}
	params := make([]jen.Code, len(def.TypeParams))
	for i, name := range def.TypeParams {
		params[i] = jen.Id(name)
	}
	return jen.Id(caseName).Index(params...)
}

// goType maps a canonical IR type to its Go representation.
func goType(t ir.Type) jen.Code {
	switch t.Kind {
	case ir.KindPrimitive:
		return goPrimitive(t.Name)
	case ir.KindGeneric, ir.KindDefined:
		return jen.Id(t.Name)
	case ir.KindVec:
		return jen.Index().Add(goType(*t.Elem))
	case ir.KindArray:
		return jen.Index(jen.Lit(t.Len)).Add(goType(*t.Elem))
	case ir.KindOption:
		return jen.Op("*").Add(goType(*t.Elem))
	default:
		panic(fmt.Sprintf("gen: unknown type kind %v", t.Kind))
	}
}

func goPrimitive(name string) jen.Code {
	switch name {
	case "u8":
		return jen.Uint8()
	case "u16":
		return jen.Uint16()
	case "u32":
		return jen.Uint32()
	case "u64":
		return jen.Uint64()
	case "i8":
		return jen.Int8()
	case "i16":
		return jen.Int16()
	case "i32":
		return jen.Int32()
	case "i64":
		return jen.Int64()
	case "u128", "i128":
		return jen.Op("*").Qual("math/big", "Int")
	case "f32":
		return jen.Float32()
	case "f64":
		return jen.Float64()
	case "bool":
		return jen.Bool()
	case "string":
		return jen.String()
	case "bytes":
		return jen.Index().Byte()
	case "pubkey":
		return jen.Id("Pubkey")
	default:
		panic(fmt.Sprintf("gen: unknown primitive %q", name))
	}
}
