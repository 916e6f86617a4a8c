package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	env, err := Setup("", config.Overrides{})
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, "builtin", env.Library.Name)
	assert.Equal(t, config.StoreMemory, env.Config.Store.Backend)

	mgr, err := env.Sessions(context.Background())
	require.NoError(t, err)
	run, err := mgr.Create(context.Background(), "bit-flip", []string{"01"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
}

func TestSetup_ConfigFileAndLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "turing.log")
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log_level: debug
log_file: `+logPath+`
store:
  backend: sqlite
  path: `+filepath.Join(dir, "runs.db")+`
`), 0644))

	env, err := Setup(cfgPath, config.Overrides{})
	require.NoError(t, err)

	_, err = env.Sessions(context.Background())
	require.NoError(t, err)
	require.NoError(t, env.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Run store ready"`)
	assert.Contains(t, string(data), `"backend":"sqlite"`)
}

func TestSetup_MissingExplicitConfig(t *testing.T) {
	_, err := Setup(filepath.Join(t.TempDir(), "nope.yaml"), config.Overrides{})
	assert.Error(t, err)
}
