package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"flowcanvas/internal/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with a config file in a temp dir so the
// user's own configuration is never read
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "flowcanvas.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("server:\n  addr: \":9999\"\nlogger:\n  level: error\n"), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", cfg))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	t.Run("json DAG", func(t *testing.T) {
		path := writeFile(t, "p.json", `{"nodes":[{"id":"A"},{"id":"B"},{"id":"C"}],"edges":[{"source":"A","target":"B"},{"source":"B","target":"C"}]}`)
		out, err := run(t, "analyze", path)
		require.NoError(t, err)
		assert.Contains(t, out, "nodes:  3")
		assert.Contains(t, out, "edges:  2")
		assert.Contains(t, out, "is_dag: true")
		assert.Contains(t, out, "order:  A -> B -> C")
	})

	t.Run("yaml cycle", func(t *testing.T) {
		path := writeFile(t, "p.yaml", `
nodes:
  - {id: A, type: text}
  - {id: B, type: text}
edges:
  - {from: A, to: B}
  - {from: B, to: A}
`)
		out, err := run(t, "analyze", path)
		require.NoError(t, err)
		assert.Contains(t, out, "is_dag: false")
		assert.NotContains(t, out, "order:")
	})

	t.Run("format flag overrides extension", func(t *testing.T) {
		path := writeFile(t, "pipeline.txt", `{"nodes":[{"id":"A"}],"edges":[]}`)
		out, err := run(t, "analyze", "--format", "json", path)
		require.NoError(t, err)
		assert.Contains(t, out, "nodes:  1")
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := writeFile(t, "pipeline.txt", `{}`)
		_, err := run(t, "analyze", path)
		assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "analyze", filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestKindsCommand(t *testing.T) {
	out, err := run(t, "kinds")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "llm")
	assert.Contains(t, out, "system,prompt")
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "9999")
	assert.Contains(t, out, "max_size: 50")
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("history:\n  max_size: 0\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"kinds", "--config", cfg})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.max_size")
}
