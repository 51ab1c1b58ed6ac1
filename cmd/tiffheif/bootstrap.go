package main

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/tiffheif/internal/adapters/driven/codec/heif"
	"github.com/custodia-labs/tiffheif/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tiffheif/internal/adapters/driven/fswalk"
	"github.com/custodia-labs/tiffheif/internal/adapters/driven/fswatch"
	"github.com/custodia-labs/tiffheif/internal/adapters/driven/inspect"
	"github.com/custodia-labs/tiffheif/internal/adapters/driven/pool"
	"github.com/custodia-labs/tiffheif/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tiffheif/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tiffheif/internal/adapters/driving/cli"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/core/services"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// dataDirName holds the run history database inside the config directory.
const dataDirName = "data"

// bootstrap wires the driven adapters into the core services.
func bootstrap(configDir string) (*cli.Services, func() error, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locating config directory: %w", err)
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}
	logger.Debug("config: %s", configStore.Path())

	validator := services.NewSourceValidator(inspect.New(), settings.Sources.Formats)
	queue := services.NewQueueService(validator, fswalk.New(), settings.Queue.Retain)

	codec := heif.New(settings.Codec.Encoder)
	converter := services.NewConverter(codec)

	closeFn := func() error { return nil }
	var runStore driven.RunStore = memory.NewRunStore()
	var batchStore driven.RunStore
	if settings.History.Enabled {
		store, err := sqlite.NewStore(filepath.Join(configDir, dataDirName))
		if err != nil {
			return nil, nil, fmt.Errorf("opening run history: %w", err)
		}
		runStore = store.RunStore()
		batchStore = runStore
		closeFn = store.Close
	}

	batch := services.NewBatchOrchestrator(converter, pool.NewFactory(), batchStore)
	batch.SetHistoryKeep(settings.History.Keep)

	watcher := services.NewFolderWatcher(fswatch.New(), validator, batch)

	return &cli.Services{
		Validator:    validator,
		Queue:        queue,
		Batch:        batch,
		Settings:     settingsService,
		History:      services.NewHistoryService(runStore),
		Watcher:      watcher,
		EncoderCheck: codec.Available,
	}, closeFn, nil
}
