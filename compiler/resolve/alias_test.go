package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlumos/lumos/compiler/resolve"
	"github.com/getlumos/lumos/schema/ast"
	"github.com/getlumos/lumos/schema/ir"
)

func TestAliasChainResolvesToPrimitive(t *testing.T) {
	t.Parallel()

	r := resolve.NewAliasResolver()
	require.NoError(t, r.AddAlias("A", &ast.NamedRef{Name: "B"}))
	require.NoError(t, r.AddAlias("B", &ast.NamedRef{Name: "C"}))
	require.NoError(t, r.AddAlias("C", &ast.PrimitiveRef{Name: "u32"}))
	require.NoError(t, r.ResolveAll())

	a, ok := r.Resolved("A")
	require.True(t, ok)
	c, ok := r.Resolved("C")
	require.True(t, ok)
	assert.True(t, a.Equal(c), "A must resolve to the same canonical type as C")
	assert.Equal(t, ir.Primitive("u32"), a)
}

func TestAliasSynonymNormalization(t *testing.T) {
	t.Parallel()

	r := resolve.NewAliasResolver()
	require.NoError(t, r.AddAlias("N", &ast.PrimitiveRef{Name: "number"}))
	require.NoError(t, r.AddAlias("B", &ast.PrimitiveRef{Name: "boolean"}))
	require.NoError(t, r.AddAlias("S", &ast.PrimitiveRef{Name: "string"}))
	require.NoError(t, r.ResolveAll())

	n, _ := r.Resolved("N")
	b, _ := r.Resolved("B")
	s, _ := r.Resolved("S")
	assert.Equal(t, ir.Primitive("u64"), n)
	assert.Equal(t, ir.Primitive("bool"), b)
	assert.Equal(t, ir.Primitive("string"), s)
}

func TestAliasCycleFails(t *testing.T) {
	t.Parallel()

	r := resolve.NewAliasResolver()
	require.NoError(t, r.AddAlias("A", &ast.NamedRef{Name: "B"}))
	require.NoError(t, r.AddAlias("B", &ast.NamedRef{Name: "A"}))

	err := r.ResolveAll()
	require.Error(t, err)
	var cerr *resolve.AliasCycleError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Chain, "A")
	assert.Contains(t, cerr.Chain, "B")
	assert.True(t, resolve.IsCycle(err))
}

func TestAliasSelfCycleFails(t *testing.T) {
	t.Parallel()

	r := resolve.NewAliasResolver()
	require.NoError(t, r.AddAlias("A", &ast.NamedRef{Name: "A"}))
	err := r.ResolveAll()
	require.Error(t, err)
	assert.True(t, resolve.IsCycle(err))
}

func TestAliasDuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	r := resolve.NewAliasResolver()
	require.NoError(t, r.AddAlias("A", &ast.PrimitiveRef{Name: "u8"}))
	err := r.AddAlias("A", &ast.PrimitiveRef{Name: "u16"})
	var derr *resolve.DuplicateAliasError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "A", derr.Name)
}

func TestAliasDiamondReuse(t *testing.T) {
	t.Parallel()

	// A and C both reach B; B must resolve once and be reusable.
	r := resolve.NewAliasResolver()
	require.NoError(t, r.AddAlias("A", &ast.NamedRef{Name: "B"}))
	require.NoError(t, r.AddAlias("C", &ast.NamedRef{Name: "B"}))
	require.NoError(t, r.AddAlias("B", &ast.PrimitiveRef{Name: "u8"}))
	require.NoError(t, r.ResolveAll())

	a, _ := r.Resolved("A")
	c, _ := r.Resolved("C")
	assert.Equal(t, a, c)
}

func TestAliasIntoSequences(t *testing.T) {
	t.Parallel()

	r := resolve.NewAliasResolver()
	require.NoError(t, r.AddAlias("Hash", &ast.ArrayRef{Elem: &ast.PrimitiveRef{Name: "u8"}, Len: 32}))
	require.NoError(t, r.AddAlias("Hashes", &ast.VecRef{Elem: &ast.NamedRef{Name: "Hash"}}))
	require.NoError(t, r.ResolveAll())

	hs, ok := r.Resolved("Hashes")
	require.True(t, ok)
	assert.Equal(t, ir.Vec(ir.Array(ir.Primitive("u8"), 32)), hs)
}

func TestConvertRefUnknownNameBecomesUserDefined(t *testing.T) {
	t.Parallel()

	r := resolve.NewAliasResolver()
	typ, err := r.ConvertRef(&ast.NamedRef{Name: "Account"})
	require.NoError(t, err)
	assert.Equal(t, ir.Defined("Account"), typ)
}

func TestAliasDepthLimit(t *testing.T) {
	t.Parallel()

	r := resolve.NewAliasResolver()
	// A long, acyclic chain must fail with a depth error instead of
	// exhausting the stack.
	for i := 0; i < resolve.MaxDepth+10; i++ {
		name := aliasName(i)
		require.NoError(t, r.AddAlias(name, &ast.NamedRef{Name: aliasName(i + 1)}))
	}
	err := r.ResolveAll()
	require.Error(t, err)
	var derr *resolve.DepthError
	assert.ErrorAs(t, err, &derr)
}

func aliasName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return "T" + name
}
