package shrink

import (
	"log/slog"

	"github.com/spf13/afero"
)

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithFs sets the filesystem the cleaner operates on.
// Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) CleanerOption {
	return func(c *Cleaner) {
		c.fs = fsys
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) CleanerOption {
	return func(c *Cleaner) {
		c.logger = logger
	}
}

// WithDirs sets the game subdirectories to process under the base
// directory. Defaults to DefaultDirs.
func WithDirs(dirs ...string) CleanerOption {
	return func(c *Cleaner) {
		c.dirs = dirs
	}
}

// WithWorkers sets how many archives are filtered concurrently. Values
// below 2 keep the original strictly sequential behavior. Archives share
// no state, so this only changes throughput, never results.
func WithWorkers(n int) CleanerOption {
	return func(c *Cleaner) {
		c.workers = n
	}
}

// WithStrict makes a failed raw copy of a retained entry abort that
// archive's rebuild instead of dropping the entry (see RebuildWithStrict).
func WithStrict(strict bool) CleanerOption {
	return func(c *Cleaner) {
		c.strict = strict
	}
}

// WithProgress sets a callback receiving per-directory and per-archive
// progress events.
func WithProgress(fn ProgressFunc) CleanerOption {
	return func(c *Cleaner) {
		c.progress = fn
	}
}
