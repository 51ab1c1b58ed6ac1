package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

func TestWatchCmd_Metadata(t *testing.T) {
	assert.Equal(t, "watch <dir>", watchCmd.Use)
	assert.Equal(t, "Convert TIFF files as they appear in a folder", watchCmd.Short)
	assert.NotNil(t, watchCmd.Flags().Lookup("output"))
	assert.NotNil(t, watchCmd.Flags().Lookup("lossless"))
}

func TestWatchCmd_RequiresDir(t *testing.T) {
	useServices(t, &Services{Watcher: &mockWatcher{}, Settings: newSettings(t, t.TempDir())})

	_, err := executeCommand(t, "watch")

	assert.Error(t, err)
}

func TestWatchCmd_NotConfigured(t *testing.T) {
	useServices(t, &Services{})

	_, err := executeCommand(t, "watch", "/incoming")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch service not configured")
}

func TestWatchCmd_ReportsBatches(t *testing.T) {
	out := t.TempDir()
	watcher := &mockWatcher{Files: []string{"/incoming/a.tif", "/incoming/corrupt.tif"}}
	useServices(t, &Services{Watcher: watcher, Settings: newSettings(t, out)})

	output, err := executeCommand(t, "watch", "/incoming")

	require.NoError(t, err)
	assert.Contains(t, output, "Watching /incoming, writing heic files to "+out)
	assert.Contains(t, output, "Converted 1 of 2 file(s)")
	assert.Contains(t, output, "could not convert corrupt.tif")
	assert.Contains(t, output, "Stopped watching.")

	assert.Equal(t, "/incoming", watcher.request.Dir)
	assert.Equal(t, out, watcher.request.Options.OutputDirectory)
	assert.Equal(t, domain.PolicySequential, watcher.request.Policy)
}

func TestWatchCmd_RelativeDir(t *testing.T) {
	watcher := &mockWatcher{}
	useServices(t, &Services{Watcher: watcher, Settings: newSettings(t, t.TempDir())})

	_, err := executeCommand(t, "watch", "incoming", "--lossless", "--parallel")

	require.NoError(t, err)
	want, err := filepath.Abs("incoming")
	require.NoError(t, err)
	assert.Equal(t, want, watcher.request.Dir)
	assert.True(t, watcher.request.Options.Lossless)
	assert.Equal(t, domain.PolicyParallel, watcher.request.Policy)
}

func TestWatchCmd_WatchError(t *testing.T) {
	useServices(t, &Services{
		Watcher:  &mockWatcher{Err: context.DeadlineExceeded},
		Settings: newSettings(t, t.TempDir()),
	})

	output, err := executeCommand(t, "watch", "/incoming")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "watch failed")
	assert.NotContains(t, output, "Stopped watching.")
}

func TestWatchCmd_NoOutputDirectory(t *testing.T) {
	watcher := &mockWatcher{}
	useServices(t, &Services{Watcher: watcher, Settings: newSettings(t, "")})

	_, err := executeCommand(t, "watch", "/incoming")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, watcher.request.Dir)
}

func TestWatchCmd_EncoderUnavailable(t *testing.T) {
	watcher := &mockWatcher{}
	useServices(t, &Services{
		Watcher:      watcher,
		Settings:     newSettings(t, t.TempDir()),
		EncoderCheck: func() error { return domain.ErrEncoderUnavailable },
	})

	_, err := executeCommand(t, "watch", "/incoming")

	assert.ErrorIs(t, err, domain.ErrEncoderUnavailable)
	assert.Empty(t, watcher.request.Dir)
}
