package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		require.NoError(t, seedCmd.Flags().Set("force", "false"))
		require.NoError(t, seedCmd.Flags().Set("file", ""))
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigCommand_MasksSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret-value-123")
	t.Setenv("PORT", "4100")

	out, err := run(t, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "server.port: 4100")
	assert.Regexp(t, `auth.jwt_secret: .?\*{8}`, out)
	assert.NotContains(t, out, "super-secret-value-123")
}

func TestSeedCommand_SkipsSecondRun(t *testing.T) {
	t.Setenv("GAIA_DATABASE_URL", filepath.Join(t.TempDir(), "gaia.db"))

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "characters  6 inserted")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "characters  skipped")
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("GAIA_DATABASE_URL", filepath.Join(t.TempDir(), "gaia.db"))

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema is up to date")
}

func TestCommands_RequireDatabase(t *testing.T) {
	t.Setenv("GAIA_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")

	_, err := run(t, "promote", "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is not set")
}

func TestPromoteCommand_UnknownUser(t *testing.T) {
	t.Setenv("GAIA_DATABASE_URL", filepath.Join(t.TempDir(), "gaia.db"))

	_, err := run(t, "promote", "nobody")
	assert.Error(t, err)
}
