package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochol/stickyparam/internal/config"
)

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv(config.EnvDatabaseURL, "")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stickyparam dev\n", stdout)
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	_, _, err := executeCLI(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvDatabaseURL)
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := executeCLI(t, "migrate", "--log-level", "loud")
	require.Error(t, err)
}

func TestInvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, _, err := executeCLI(t, "migrate", "--config", path)
	require.Error(t, err)
}

func TestWireAppInMemorySeedsJobs(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.EnvDatabaseURL, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
history:
  lookback: 10
jobs:
  - name: build
    parameters:
      - kind: persistentBooleanParam
        name: DEPLOY
        default: true
`), 0o644))
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	ctx := context.Background()
	a, err := wireApp(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	job, err := a.jobs.Get(ctx, "build")
	require.NoError(t, err)
	require.Len(t, job.Parameters, 1)

	defaults, err := a.params.Defaults(ctx, "build")
	require.NoError(t, err)
	assert.Equal(t, true, defaults.Parameters[0].Value.Raw)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
