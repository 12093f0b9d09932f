// Package must provides helpers for cleanup operations whose failures can't
// be handled meaningfully but shouldn't be silently discarded either.
package must

import (
	"io"
	"os"

	"github.com/ink-feather-org/neat-fs/pkg/logging"
)

// Close closes the specified closer, logging a warning on failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes the specified path, logging a warning on failure.
func OSRemove(path string, logger *logging.Logger) {
	if err := os.Remove(path); err != nil {
		logger.Warnf("unable to remove '%s': %s", path, err.Error())
	}
}
