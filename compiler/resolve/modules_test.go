package resolve_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlumos/lumos/compiler/resolve"
)

func TestResolveModulesSiblingFile(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use models::Account;
record Wallet { account: Account; }
`,
		"models.lumos": `
pub record Account { lamports: u64; }
`,
	})
	r := resolve.NewModuleResolver()
	defs, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)

	account := defs.Lookup("Account")
	require.NotNil(t, account)
	assert.Equal(t, []string{"models"}, account.ModulePath)
	assert.Equal(t, "models::Account", account.QualifiedName())

	wallet := defs.Lookup("Wallet")
	require.NotNil(t, wallet)
	assert.Empty(t, wallet.ModulePath)

	root := r.Root()
	require.NotNil(t, root)
	assert.Equal(t, "", root.Name)
	child := r.Module(root.Children["models"])
	require.NotNil(t, child)
	assert.Equal(t, "models", child.Name)
	assert.Equal(t, root.Path, child.Parent)
}

func TestResolveModulesDirectoryEntry(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use models::Account;
record Wallet { account: Account; }
`,
		"models/mod.lumos": `
pub record Account { lamports: u64; }
`,
	})
	r := resolve.NewModuleResolver()
	_, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
	assert.Len(t, r.LoadedFiles(), 2)
}

func TestResolveModulesNotFoundListsBothPaths(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `mod ghosts;`,
	})
	r := resolve.NewModuleResolver()
	_, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.Error(t, err)
	var nerr *resolve.ModuleNotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "ghosts", nerr.Name)
	require.Len(t, nerr.Tried, 2)
	assert.Contains(t, nerr.Tried[0], "ghosts.lumos")
	assert.Contains(t, nerr.Tried[1], filepath.Join("ghosts", "mod.lumos"))
	assert.Contains(t, err.Error(), nerr.Tried[0])
	assert.Contains(t, err.Error(), nerr.Tried[1])
}

func TestUseCratePathIndependentOfDepth(t *testing.T) {
	t.Parallel()

	// The same crate:: path resolves from the root and from a module
	// two levels deep.
	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
mod outer;
use crate::models::Account;
record Wallet { account: Account; }
`,
		"models.lumos": `
pub record Account { lamports: u64; }
`,
		"outer/mod.lumos": `
mod inner;
`,
		"outer/inner.lumos": `
use crate::models::Account;
record Shadow { account: Account; }
`,
	})
	r := resolve.NewModuleResolver()
	defs, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
	require.NotNil(t, defs.Lookup("Shadow"))
	shadow := defs.Lookup("Shadow")
	assert.Equal(t, []string{"outer", "inner"}, shadow.ModulePath)
}

func TestUseSuperFromRootFails(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use super::Account;
`,
		"models.lumos": `pub record Account { lamports: u64; }`,
	})
	r := resolve.NewModuleResolver()
	_, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.Error(t, err)
	var perr *resolve.NoParentError
	require.ErrorAs(t, err, &perr)
}

func TestUseSuperFromChild(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod shared;
mod consumer;
pub record Top { x: u8; }
`,
		"shared.lumos": `pub record Mint { supply: u64; }`,
		"consumer.lumos": `
use super::Top;
use super::shared::Mint;
record Holding { top: Top; mint: Mint; }
`,
	})
	r := resolve.NewModuleResolver()
	defs, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
	require.NotNil(t, defs.Lookup("Holding"))
}

func TestUseSelfPath(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod inner;
use self::inner::Thing;
record Holder { thing: Thing; }
`,
		"inner.lumos": `pub record Thing { x: u8; }`,
	})
	r := resolve.NewModuleResolver()
	_, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
}

func TestUseAnchorNotFirstFails(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use models::super::Account;
`,
		"models.lumos": `pub record Account { lamports: u64; }`,
	})
	r := resolve.NewModuleResolver()
	_, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.Error(t, err)
	var merr *resolve.MalformedPathError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "super", merr.Segment)
}

func TestUseUnresolvableSegmentFails(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use crate::nonexistent::Account;
`,
		"models.lumos": `pub record Account { lamports: u64; }`,
	})
	r := resolve.NewModuleResolver()
	_, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.Error(t, err)
	var uerr *resolve.UnresolvedPathError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "nonexistent", uerr.Segment)
}

func TestUseUnknownTypeInModuleFails(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use models::Ghost;
`,
		"models.lumos": `pub record Account { lamports: u64; }`,
	})
	r := resolve.NewModuleResolver()
	_, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.Error(t, err)
	var uerr *resolve.UnresolvedTypeError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "Ghost", uerr.Name)
	assert.Equal(t, "models", uerr.Module)
}

func TestPrivateTypeAcrossModulesFails(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use models::Secret;
`,
		"models.lumos": `
record Secret { key: [u8; 32]; }
`,
	})
	r := resolve.NewModuleResolver()
	_, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.Error(t, err)
	var perr *resolve.PrivacyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Secret", perr.Name)
	assert.Equal(t, "models", perr.Module)
	assert.True(t, resolve.IsPrivacyError(err))
}

func TestPrivateTypeWithinOwnModuleSucceeds(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use models::Vault;
record App { vault: Vault; }
`,
		"models.lumos": `
record Secret { key: [u8; 32]; }
use self::Secret;
pub record Vault { secret: Secret; }
`,
	})
	r := resolve.NewModuleResolver()
	defs, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
	require.NotNil(t, defs.Lookup("Vault"))
}

func TestModuleAliasesSharedAcrossTree(t *testing.T) {
	t.Parallel()

	dir := writeSchemas(t, map[string]string{
		"main.lumos": `
mod models;
use models::Account;
record App { account: Account; }
`,
		"models.lumos": `
type Balance = number;
pub record Account { lamports: Balance; }
`,
	})
	r := resolve.NewModuleResolver()
	defs, err := r.ResolveModules(filepath.Join(dir, "main.lumos"))
	require.NoError(t, err)
	account := defs.Lookup("Account")
	require.NotNil(t, account)
	assert.Equal(t, "u64", account.Fields[0].Type.Name)
}
