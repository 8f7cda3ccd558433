package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHelp(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(out, []string{"--help"}))
	assert.Contains(t, out.String(), "Usage:")
	for _, sub := range []string{"structured", "graded", "mesh", "fluids"} {
		assert.Contains(t, out.String(), sub)
	}
}

func TestRunFluids(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(out, []string{"fluids"}))
	assert.Contains(t, out.String(), "Toluene")
	assert.Contains(t, out.String(), "n-Pentane")
}

func TestRunStructured(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "table.hcl")
	require.NoError(t, os.WriteFile(cfg, []byte(`
properties = ["P", "T", "D"]
structured {
  n_d = 12
  n_t = 4
}
`), 0o600))
	output := filepath.Join(dir, "small.vtk")

	out := &bytes.Buffer{}
	require.NoError(t, run(out, []string{"structured", "--config", cfg, "--output", output, "--workers", "2"}))
	assert.Equal(t, "wrote "+output+": 48 nodes, 3 properties\n", out.String())

	b, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "# vtk DataFile Version 4.2\n"))
	assert.Contains(t, string(b), "POINT_DATA 48\nFIELD FieldData 3\n")
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(bad, []byte(`fluid = "Unobtainium"`), 0o600))

	for name, args := range map[string][]string{
		"UnknownCommand": {"tabulate"},
		"MissingConfig":  {"structured", "--config", filepath.Join(dir, "none.hcl")},
		"InvalidConfig":  {"structured", "--config", bad},
		"Workers":        {"graded", "--workers", "0"},
		"MissingMesh":    {"mesh", filepath.Join(dir, "none.msh")},
		"MeshArgs":       {"mesh"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(&bytes.Buffer{}, args))
		})
	}
}
