package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()
	require.NotNil(t, root)
	assert.Equal(t, "indicadores-api", root.Name())

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "version")
	assert.Contains(t, names, "migrate")
	assert.Contains(t, names, "seed")
	assert.Contains(t, names, "hash-password")
}

func TestMigrateCmdHasSubcommands(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, len(migrateCmd.Commands()))
	for _, sub := range migrateCmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "up")
	assert.Contains(t, names, "down")
}
