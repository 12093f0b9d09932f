package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/ink-feather-org/neat-fs/pkg/logging"
	"github.com/ink-feather-org/neat-fs/pkg/must"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/backends/boltstore"
)

// defaultStorePath is the database file used when neither the store flag nor
// the NEATFS_STORE environment variable specifies one.
const defaultStorePath = "neatfs.db"

// storePath determines the effective database file path from the store flag
// and the NEATFS_STORE environment variable.
func storePath() string {
	if rootConfiguration.store != "" {
		return rootConfiguration.store
	}
	if fromEnvironment := os.Getenv("NEATFS_STORE"); fromEnvironment != "" {
		return fromEnvironment
	}
	return defaultStorePath
}

// newLogger builds the logger from the log-level flag and the
// NEATFS_LOG_LEVEL environment variable.
func newLogger() (*logging.Logger, error) {
	name := rootConfiguration.logLevel
	if name == "" {
		name = os.Getenv("NEATFS_LOG_LEVEL")
	}
	if name == "" {
		name = "warn"
	}
	level, ok := logging.NameToLevel(name)
	if !ok {
		return nil, errors.Errorf("invalid log level: %s", name)
	}
	return logging.NewLogger(level), nil
}

// loadConfiguration loads the commit tunables from the config flag, if set.
func loadConfiguration() (*vfs.Configuration, error) {
	if rootConfiguration.configurationFile == "" {
		return nil, nil
	}
	configuration, err := vfs.LoadConfiguration(rootConfiguration.configurationFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load configuration")
	}
	return configuration, nil
}

// withFileSystem opens the store, builds a filesystem over it, invokes the
// specified callback, and then commits and tears everything down.
func withFileSystem(run func(context.Context, *vfs.FileSystem) error) error {
	// Build the logger.
	logger, err := newLogger()
	if err != nil {
		return err
	}

	// Load tunables.
	configuration, err := loadConfiguration()
	if err != nil {
		return err
	}

	// Open the store.
	store, err := boltstore.NewStore(storePath(), logger.Sublogger("store"))
	if err != nil {
		return errors.Wrap(err, "unable to open store")
	}
	defer must.Close(store, logger)

	// Build the filesystem and ensure a final flush on the way out.
	ctx := context.Background()
	fileSystem := vfs.NewFileSystem(store, configuration, logger)
	if err := run(ctx, fileSystem); err != nil {
		fileSystem.Close(ctx)
		return err
	}
	if err := fileSystem.Close(ctx); err != nil {
		return errors.Wrap(err, "unable to commit pending changes")
	}

	// Success.
	return nil
}
