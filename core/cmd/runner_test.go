package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/lotbot/core/config"
	coretelegram "github.com/m3rciful/lotbot/core/telegram"
)

type stubConfig struct{ core *coreconfig.Config }

func (s stubConfig) CoreConfig() *coreconfig.Config { return s.core }

type stubApp struct{ opts coretelegram.RunOptions }

func (a stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, nil }

func TestRunLoadsEnvFileAndWrapsHooks(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LOTBOT_TEST_CONFIG=from-env-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOTBOT_TEST_CONFIG") })

	var (
		loadedPath string
		started    bool
		stopped    bool
		shutdown   bool
	)
	err := Run(Options{
		ConfigEnvVar: "LOTBOT_TEST_CONFIG",
		EnvFiles:     []string{filepath.Join(dir, "missing.env"), envPath},
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return stubApp{opts: coretelegram.RunOptions{
				OnStart: func(context.Context, coretelegram.Runtime) error { started = true; return nil },
				OnStop:  func(context.Context, coretelegram.Runtime) error { stopped = true; return nil },
			}}, nil
		},
		ShutdownLogger: func() error { shutdown = true; return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "from-env-file", loadedPath)
	assert.True(t, started)
	assert.True(t, stopped)
	assert.True(t, shutdown)
}

func TestRunRequiresConfigPath(t *testing.T) {
	err := Run(Options{
		ConfigEnvVar: "LOTBOT_TEST_UNSET_CONFIG",
		LoadConfig:   func(string) (ConfigCarrier, error) { return nil, nil },
		Bootstrap:    func(ConfigCarrier) (TelegramApp, error) { return nil, nil },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOTBOT_TEST_UNSET_CONFIG")
}

func TestRunStopsOnBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)
}
