package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeed(t, `metric: yield
parameters:
  - name: temp
    min: 0
    max: 100
experiments:
  - values:
      temp: 50
      yield: 0.80
  - values:
      temp: "73.2"
      yield: ~
`)

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	assert.Equal(t, "yield", seed.Metric)
	assert.Equal(t, []SeedParameter{{Name: "temp", Min: 0, Max: 100}}, seed.Parameters)
	require.Len(t, seed.Experiments, 2)
	assert.Equal(t, map[string]string{"temp": "50", "yield": "0.80"}, seed.Experiments[0].Strings())
	assert.Equal(t, map[string]string{"temp": "73.2", "yield": ""}, seed.Experiments[1].Strings())
}

func TestLoadSeedFileNotFound(t *testing.T) {
	seed, err := LoadSeed("/nonexistent/session.yml")
	assert.Nil(t, seed)
	assert.ErrorContains(t, err, "failed to read seed file")
}

func TestLoadSeedInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "parameters: [", "failed to parse seed file"},
		{"non-scalar value", "experiments:\n  - values:\n      temp: [1, 2]\n", "must be a scalar"},
		{"unnamed parameter", "parameters:\n  - min: 1\n", "name is required"},
		{"duplicate parameter", "parameters:\n  - name: a\n  - name: a\n", "duplicate name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(writeSeed(t, tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
