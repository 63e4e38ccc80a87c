package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapprep/internal/config"
	"github.com/leapstack-labs/leapprep/pkg/core"
)

func executeInit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := executeInit(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "LeapPrep project initialized!")

	path := filepath.Join(dir, "leapprep.yaml")
	require.FileExists(t, path)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	def := config.Default()
	assert.Equal(t, def.Missing, cfg.Missing)
	assert.Equal(t, def.Outliers, cfg.Outliers)
	assert.Equal(t, def.Split, cfg.Split)
	assert.Equal(t, def.Scale, cfg.Scale)
	assert.Equal(t, "csv", cfg.Source.Type)
	assert.Equal(t, filepath.Join(dir, config.DefaultSourcePath), cfg.Source.Path)
	require.NoError(t, cfg.Validate())
}

func TestInitCommand_Force(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leapprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

	_, err := executeInit(t, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))

	_, err = executeInit(t, dir, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# LeapPrep project configuration.")
}

func TestInitCommand_Sources(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  error
		contains []string
		absent   []string
	}{
		{
			name:     "csv path",
			args:     []string{"--path", "raw/zillow.csv"},
			contains: []string{"type: csv", "path: raw/zillow.csv"},
			absent:   []string{"cache:"},
		},
		{
			name:    "database without query",
			args:    []string{"--source-type", "postgres"},
			wantErr: core.ErrInvalidConfiguration,
		},
		{
			name:     "database with query",
			args:     []string{"--source-type", "postgres", "--query", "SELECT * FROM properties_2017"},
			contains: []string{"type: postgres", "query: SELECT * FROM properties_2017", "cache: cache/source.csv"},
			absent:   []string{"path: data.csv"},
		},
		{
			name:     "sqlite file",
			args:     []string{"--source-type", "sqlite", "--path", "zillow.db", "--query", "SELECT 1"},
			contains: []string{"type: sqlite", "path: zillow.db"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := executeInit(t, append([]string{dir}, tt.args...)...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.NoFileExists(t, filepath.Join(dir, "leapprep.yaml"))
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(filepath.Join(dir, "leapprep.yaml"))
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, string(data), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, string(data), s)
			}
		})
	}
}
