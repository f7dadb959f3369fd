package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlumos/lumos/compiler/resolve"
)

// writeSchemas writes the given relative-path -> source map under a
// fresh temp directory and returns its root.
func writeSchemas(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, src := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	return dir
}

func TestResolveImportsMergesFiles(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
import { Account } from "./types";
record Wallet {
    account: Account;
    balance: Balance;
}
`,
		"types.lumos": `
type Balance = u64;
record Account {
    lamports: Balance;
}
`,
	})
	r := resolve.NewImportResolver()
	defs, count, err := r.ResolveImports(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Aliases are visible across files and substituted everywhere.
	wallet := defs.Lookup("Wallet")
	require.NotNil(t, wallet)
	assert.Equal(t, "u64", wallet.Fields[1].Type.Name)
	require.NotNil(t, defs.Lookup("Account"))
	require.NotNil(t, defs.Lookup("Balance"))
}

func TestResolveImportsLoadsEachFileOnce(t *testing.T) {
	t.Parallel()

	// main imports types directly and again transitively through util.
	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
import { Account } from "./types";
import { Helper } from "./util";
record Root { a: Account; h: Helper; }
`,
		"util.lumos": `
import { Account } from "./types";
record Helper { backing: Account; }
`,
		"types.lumos": `
record Account { lamports: u64; }
`,
	})
	r := resolve.NewImportResolver()
	_, count, err := r.ResolveImports(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
	assert.Equal(t, 3, count, "types must appear exactly once in the loaded set")
	assert.Len(t, r.LoadedFiles(), 3)
}

func TestResolveImportsCycleFails(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"a.lumos": `
import { B } from "./b";
record A { b: B; }
`,
		"b.lumos": `
import { A } from "./a";
record B { a: A; }
`,
	})
	r := resolve.NewImportResolver()
	_, _, err := r.ResolveImports(filepath.Join(dir, "a.lumos"))
	require.Error(t, err)
	var cerr *resolve.CircularImportError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "circular import")
	assert.True(t, resolve.IsCycle(err))
	// Chain is reported in discovery order: a -> b -> a.
	require.Len(t, cerr.Chain, 3)
	assert.Equal(t, cerr.Chain[0], cerr.Chain[2])
}

func TestResolveImportsMissingFileFails(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
import { Gone } from "./missing";
record R { g: Gone; }
`,
	})
	r := resolve.NewImportResolver()
	_, _, err := r.ResolveImports(filepath.Join(dir, "main.lumos"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading schema file")
}

func TestValidateImportsReportsMissingName(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
import { Account, Phantom } from "./types";
record R { a: Account; }
`,
		"types.lumos": `
record Account { lamports: u64; }
`,
	})
	r := resolve.NewImportResolver()
	_, _, err := r.ResolveImports(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err, "Phantom is never referenced as a type, so resolution succeeds")

	err = r.ValidateImports()
	require.Error(t, err)
	var merr *resolve.MissingImportError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "Phantom", merr.Name)
	assert.Equal(t, "./types", merr.From)
}

func TestResolveImportsForwardReferenceAcrossFiles(t *testing.T) {
	t.Parallel()

	// types references a name defined only in main; validation runs
	// over the merged set, so this passes.
	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
import { Account } from "./types";
record Owner { key: pubkey; }
record Root { a: Account; }
`,
		"types.lumos": `
record Account { owner: Owner; }
`,
	})
	r := resolve.NewImportResolver()
	defs, _, err := r.ResolveImports(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
	require.NotNil(t, defs.Lookup("Owner"))
}

func TestResolveImportsUndefinedAcrossSetFails(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
import { Account } from "./types";
record Root { a: Account; }
`,
		"types.lumos": `
record Account { mint: Mint; }
`,
	})
	r := resolve.NewImportResolver()
	_, _, err := r.ResolveImports(filepath.Join(dir, "main.lumos"))
	require.Error(t, err)
	var uerr *resolve.UndefinedTypeError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "Account", uerr.Type)
	assert.Equal(t, "Mint", uerr.Ref)
}

func TestImportExtensionInference(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos":  `import { A } from "./sub/types.lumos"; record R { a: A; }`,
		"other.lumos": `import { A } from "./sub/types"; record Q { a: A; }`,
		"sub/types.lumos": `
record A { x: u8; }
`,
	})
	for _, entry := range []string{"main.lumos", "other.lumos"} {
		r := resolve.NewImportResolver()
		_, count, err := r.ResolveImports(filepath.Join(dir, entry))
		require.NoError(t, err, entry)
		assert.Equal(t, 2, count)
	}
}
