package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: memory\nlog:\n  level: error\n"), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQueueListPrintsHeader(t *testing.T) {
	out, err := run(t, "--config", memoryConfig(t), "queue", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"POS", "QUEUE", "ID", "CUSTOMER", "SERVICE", "NEEDS", "DATE", "TIME"}, strings.Fields(lines[0]))
}

func TestQueueDrainWithLimit(t *testing.T) {
	out, err := run(t, "--config", memoryConfig(t), "queue", "drain", "--max=1")
	require.NoError(t, err)

	var res struct {
		Assigned []json.RawMessage `json:"assigned"`
		Stopped  string            `json:"stopped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Assigned)
	assert.Equal(t, "No appointments in queue", res.Stopped)
}

func TestQueueAssignRejectsBadIDs(t *testing.T) {
	_, err := run(t, "--config", memoryConfig(t), "queue", "assign", "nope", "also-nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid queue ID "nope"`)

	_, err = run(t, "--config", memoryConfig(t), "queue", "assign", "only-one")
	assert.Error(t, err)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	_, err := run(t, "--config", memoryConfig(t), "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate requires the postgres driver")
}
