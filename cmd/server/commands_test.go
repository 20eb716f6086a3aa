package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/platform/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")

	migrate, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	sub := make([]string, 0, 3)
	for _, c := range migrate.Commands() {
		sub = append(sub, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status"}, sub)

	assert.NotNil(t, root.PersistentFlags().Lookup("profile"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskhub.db")
	t.Setenv(config.EnvPrefix+"_DATABASE_URL", "sqlite:"+path)

	out, err := execute(t, "--profile", "test", "migrate", "status")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "pending"), line)
	}

	_, err = execute(t, "--profile", "test", "migrate", "up")
	require.NoError(t, err)

	out, err = execute(t, "--profile", "test", "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "applied  00001 00001_create_clients.sql")
	assert.Contains(t, out, "applied  00002 00002_create_tasks.sql")

	_, err = execute(t, "--profile", "test", "migrate", "down")
	require.NoError(t, err)

	out, err = execute(t, "--profile", "test", "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "applied  00001")
	assert.Contains(t, out, "pending  00002")
}

func TestCommandRejectsInvalidConfiguration(t *testing.T) {
	t.Setenv(config.EnvPrefix+"_DATABASE_URL", "mysql://localhost/taskhub")

	_, err := execute(t, "--profile", "test", "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestCommandRejectsMissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "migrate", "status")
	require.Error(t, err)
}

func TestPrintMigrationStatus(t *testing.T) {
	var buf bytes.Buffer
	printMigrationStatus(&buf, []database.MigrationStatus{
		{Version: 1, Source: "00001_create_clients.sql", Applied: true},
		{Version: 2, Source: "00002_create_tasks.sql"},
	})

	assert.Equal(t,
		"applied  00001 00001_create_clients.sql\npending  00002 00002_create_tasks.sql\n",
		buf.String())
}
