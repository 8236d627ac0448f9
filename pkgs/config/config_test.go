package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "opt_data", cfg.DataName)
	assert.Equal(t, "opt_ijData", cfg.InjectedName)
	assert.Equal(t, "sable", cfg.RuntimeName)
	assert.Equal(t, "out", cfg.OutDir)
}

func TestParseEmptyObjectGetsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"dataName": "data",
		"injectedName": "ij",
		"outDir": "build",
		"globals": ["app.Mode.DEBUG"],
		"functions": {"length": [1], "range": [1, 2, 3]}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataName)
	assert.Equal(t, "ij", cfg.InjectedName)
	assert.Equal(t, "sable", cfg.RuntimeName)
	assert.Equal(t, "build", cfg.OutDir)
	assert.Equal(t, []string{"app.Mode.DEBUG"}, cfg.Globals)
	assert.Equal(t, map[string][]int{"length": {1}, "range": {1, 2, 3}}, cfg.Functions)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`{"dataNme": "data"}`))
	assert.ErrorContains(t, err, "schema validation failed")
}

func TestParseRejectsWrongTypes(t *testing.T) {
	for _, bad := range []string{
		`{"dataName": 3}`,
		`{"globals": "app"}`,
		`{"functions": {"length": ["one"]}}`,
		`{"functions": {"length": [-1]}}`,
		`{"outDir": ""}`,
	} {
		_, err := Parse([]byte(bad))
		assert.ErrorContains(t, err, "schema validation failed", "input %s", bad)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{`))
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"outDir": "gen"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gen", cfg.OutDir)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "reading config")
}

func TestResolver(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.Resolver())

	cfg.Globals = []string{"app.DEBUG"}
	cfg.Functions = map[string][]int{"length": {1}}
	r := cfg.Resolver()
	require.NotNil(t, r)
	assert.True(t, r.IsKnownGlobal("app.DEBUG"))
	assert.False(t, r.IsKnownGlobal("app.RELEASE"))
	arities, ok := r.FunctionArities("length")
	assert.True(t, ok)
	assert.Equal(t, []int{1}, arities)
}

func TestGeneratorOptions(t *testing.T) {
	cfg, err := Parse([]byte(`{"dataName": "d", "injectedName": "i", "runtimeName": "rt"}`))
	require.NoError(t, err)
	opts := cfg.GeneratorOptions()
	assert.Equal(t, "d", opts.DataName)
	assert.Equal(t, "i", opts.InjectedName)
	assert.Equal(t, "rt", opts.RuntimeName)
}
