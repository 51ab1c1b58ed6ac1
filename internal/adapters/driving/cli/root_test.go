package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Metadata(t *testing.T) {
	assert.Equal(t, "tiffheif", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-dir"))

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"convert", "validate", "watch", "settings", "history", "tui", "mcp", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestSetServices_Nil(t *testing.T) {
	useServices(t, &Services{Queue: newMockQueue(), Batch: &mockBatch{}})

	SetServices(nil)

	assert.Nil(t, queueService)
	assert.Nil(t, batchOrchestrator)
	assert.Nil(t, encoderCheck)
}

func TestResolveConfigDir(t *testing.T) {
	original := configDir
	defer func() { configDir = original }()

	configDir = ""
	t.Setenv(HomeEnv, "")
	assert.Equal(t, "", resolveConfigDir())

	t.Setenv(HomeEnv, "/env/home")
	assert.Equal(t, "/env/home", resolveConfigDir())

	configDir = "/flag/home"
	assert.Equal(t, "/flag/home", resolveConfigDir())
}

// withBootstrap installs b for the duration of the test.
func withBootstrap(t *testing.T, b Bootstrap) {
	t.Helper()
	useServices(t, &Services{})
	SetBootstrap(b)
	t.Cleanup(func() {
		SetBootstrap(nil)
		closeServices = nil
	})
}

func TestExecute_BootstrapsAndReleases(t *testing.T) {
	var gotDir string
	closed := false
	withBootstrap(t, func(dir string) (*Services, func() error, error) {
		gotDir = dir
		return &Services{History: &mockHistory{}}, func() error {
			closed = true
			return nil
		}, nil
	})

	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"history", "--config-dir", "/tmp/tiffheif-test"})
	defer rootCmd.SetArgs(nil)

	err := Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/tmp/tiffheif-test", gotDir)
	assert.NotNil(t, historyService)
	assert.True(t, closed)
}

func TestExecute_BootstrapUsesEnv(t *testing.T) {
	var gotDir string
	withBootstrap(t, func(dir string) (*Services, func() error, error) {
		gotDir = dir
		return &Services{}, nil, nil
	})
	t.Setenv(HomeEnv, "/env/tiffheif")

	_, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "/env/tiffheif", gotDir)
}

func TestExecute_BootstrapError(t *testing.T) {
	withBootstrap(t, func(string) (*Services, func() error, error) {
		return nil, nil, errors.New("config unreadable")
	})

	_, err := executeCommand(t, "version")

	require.Error(t, err)
	assert.Equal(t, "initialising: config unreadable", err.Error())
}

func TestRelease_LogsCloseError(t *testing.T) {
	calls := 0
	closeServices = func() error {
		calls++
		return errors.New("database busy")
	}

	release()
	release()

	assert.Equal(t, 1, calls)
	assert.Nil(t, closeServices)
}
