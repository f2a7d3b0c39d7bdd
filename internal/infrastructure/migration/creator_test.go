package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates an up and down pair", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add ledger entries")
		require.NoError(t, err)

		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)
		assert.Contains(t, mf.UpPath, "add_ledger_entries.up.sql")
		assert.Contains(t, mf.DownPath, "add_ledger_entries.down.sql")
		assert.Len(t, mf.Version, 14)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add ledger entries")
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := t.TempDir() + "/nested/migrations"

		_, err := CreateMigration(dir, "init")
		require.NoError(t, err)

		assert.DirExists(t, dir)
	})
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_ledger_entries", sanitizeName("Add Ledger Entries"))
	assert.Equal(t, "fix_sku_index", sanitizeName("fix--sku__index"))
	assert.Equal(t, "v2", sanitizeName("v2!!!"))
	assert.Equal(t, "trailing", sanitizeName("trailing -"))
}

func TestListMigrations(t *testing.T) {
	t.Run("lists migration base names", func(t *testing.T) {
		dir := t.TempDir()
		_, err := CreateMigration(dir, "first")
		require.NoError(t, err)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.Contains(t, migrations[0], "first")
	})

	t.Run("missing directory yields an empty list", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir() + "/absent")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
