package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossfilter/blobstore"
	"github.com/hupe1980/crossfilter/config"
)

const datasetYAML = `
fields:
  - {name: cat, role: column, type: text}
  - {name: val, role: measure, type: numeric, queryName: Sum(val), format: "#,0.00"}
rows:
  - {identity: A, values: {cat: x, val: 10}}
  - {identity: B, values: {cat: y, val: 20}}
  - {identity: C, values: {cat: z, val: 30}}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCmd(t *testing.T) {
	data := writeFile(t, "data.yaml", datasetYAML)

	out, err := run(t, "resolve", "-d", data, "--datum", `{"cat":"y"}`)
	require.NoError(t, err)
	assert.Equal(t, "metadata-match: B\n", out)

	out, err = run(t, "resolve", "-d", data)
	require.NoError(t, err)
	assert.Equal(t, "nothing to resolve: clear\n", out)
}

func TestSelectCmd(t *testing.T) {
	data := writeFile(t, "data.yaml", datasetYAML)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"single", []string{"--datum", `{"cat":"y"}`}, []string{"resolved by metadata-match", "selection: B"}},
		{"multi toggle", []string{"--selection", "A", "--ctrl", "--facet", `{"__row__":0}`, "--facet", `{"__row__":1}`},
			[]string{"resolved by batch-tags", "selection: B"}},
		{"limit", []string{"--options", `{"limit":1}`, "--facet", `{"__row__":0}`, "--facet", `{"__row__":1}`},
			[]string{"rejected: limit 1 exceeded, selection kept: (none)"}},
		{"advanced", []string{"--options", "mode: advanced\nfilterExpr: datum.val > 15\n"}, []string{"selection: B,C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"select", "-d", data}, tt.args...)...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestSelectCmd_InvalidOptions(t *testing.T) {
	data := writeFile(t, "data.yaml", datasetYAML)
	_, err := run(t, "select", "-d", data, "--options", `{"mode":"expert"}`)
	assert.Error(t, err)
}

func TestFilterCmd(t *testing.T) {
	data := writeFile(t, "data.yaml", datasetYAML)

	out, err := run(t, "filter", "-d", data, "datum.cat == _{cat}_", "--origin", `{"cat":"x"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "selection: A")

	out, err = run(t, "filter", "-d", data, "datum.val >=")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: The cross-filter could not be applied")
}

func TestTooltipCmd(t *testing.T) {
	data := writeFile(t, "data.yaml", datasetYAML)

	out, err := run(t, "tooltip", "-d", data, `{"val":"1234.5","cat":"y"}`, "--raw")
	require.NoError(t, err)
	assert.Equal(t, "cat  y\nval  1,234.50\n", out)

	out, err = run(t, "tooltip", "-d", data, `"plain"`)
	require.NoError(t, err)
	assert.Equal(t, "   plain\n", out)

	out, err = run(t, "tooltip", "-d", data, `"plain"`, "--event", "mouseout")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStatusCmd(t *testing.T) {
	data := writeFile(t, "data.yaml", datasetYAML)

	out, err := run(t, "status", "-d", data, "--selection", "B", "--describe")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "__row__"))
	assert.Contains(t, lines[1], "Off (not selected)")
	assert.Contains(t, lines[2], "On (selected)")
	assert.Contains(t, out, "__row__: __row__ is the zero-based row number of the dataset.")
}

func TestContextMenuCmd(t *testing.T) {
	data := writeFile(t, "data.yaml", datasetYAML)

	out, err := run(t, "context-menu", "-d", data, "--datum", `{"cat":"y"}`, "--x", "3", "--y", "4")
	require.NoError(t, err)
	assert.Equal(t, "context menu at (3, 4) for B\n", out)
}

func TestExportCmd(t *testing.T) {
	data := writeFile(t, "data.yaml", datasetYAML)
	root := t.TempDir()
	cfg := writeFile(t, "config.yaml", "export:\n  backend: local\n  path: "+root+"\n  compression: lz4\n")

	out, err := run(t, "export", "write", "--config", cfg, "-d", data, "--selection", "B", "--id", "snap1")
	require.NoError(t, err)
	assert.Equal(t, "snap1\n", out)

	out, err = run(t, "export", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "snap1")
	assert.Contains(t, out, "lz4")

	out, err = run(t, "export", "load", "--config", cfg, "snap1")
	require.NoError(t, err)
	assert.Contains(t, out, "identity: B")

	_, err = run(t, "export", "write", "--config", cfg, "-d", data, "--id", "snap1")
	assert.Error(t, err, "snapshots are write-once")

	_, err = run(t, "export", "delete", "--config", cfg, "snap1")
	require.NoError(t, err)
	out, err = run(t, "export", "list", "--config", cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "snap1")
}

func TestConfigShowCmd(t *testing.T) {
	out, err := run(t, "config", "show", "--locale", "de-DE")
	require.NoError(t, err)
	assert.Contains(t, out, "selectionMaxDataPoints: 50")
	assert.Contains(t, out, "locale: de-DE")
}

func TestMissingDataset(t *testing.T) {
	_, err := run(t, "resolve")
	assert.ErrorIs(t, err, errNoDataset)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, err := openStore(ctx, config.Export{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, s)

	s, err = openStore(ctx, config.Export{Backend: "local", Path: t.TempDir(), CacheBytes: 1 << 20})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.CachingStore{}, s)

	_, err = openStore(ctx, config.Export{Backend: "minio"})
	assert.Error(t, err)

	_, err = openStore(ctx, config.Export{Backend: "ftp"})
	assert.Error(t, err)
}
