package shrink

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/iw4x/shrink-iw4x/internal/fsops"
)

// DefaultDirs are the game subdirectories a stock IW4x install keeps its
// archives in.
var DefaultDirs = []string{"main", "iw4x"}

// Cleaner orchestrates a run over a game installation: it bulk-deletes
// directories named by the policy, filters every archive it finds in the
// configured subdirectories, and aggregates the removal counts.
//
// Archives are independent of each other; an error in one is recorded and
// the run continues.
type Cleaner struct {
	fs       afero.Fs
	logger   *slog.Logger
	policy   Policy
	dirs     []string
	workers  int
	strict   bool
	progress ProgressFunc
}

// NewCleaner creates a Cleaner for the given policy.
func NewCleaner(policy Policy, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		fs:      afero.NewOsFs(),
		policy:  policy,
		dirs:    DefaultDirs,
		workers: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Cleaner) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

func (c *Cleaner) emit(ev ProgressEvent) {
	if c.progress != nil {
		c.progress(ev)
	}
}

// Run processes every configured subdirectory under baseDir and returns
// the aggregated stats. Per-archive errors are recorded in the stats and
// logged, never fatal; Run only fails when baseDir is unusable or the
// context is canceled. On cancellation the stats gathered so far are
// returned alongside the error: finished archives stay rebuilt, untouched
// ones stay untouched.
func (c *Cleaner) Run(ctx context.Context, baseDir string) (*Stats, error) {
	ok, err := afero.DirExists(c.fs, baseDir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", baseDir, err)
	}
	if !ok {
		return nil, fmt.Errorf("directory %s: %w", baseDir, fs.ErrNotExist)
	}

	stats := &Stats{}
	var mu sync.Mutex
	for _, name := range c.dirs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := c.processDir(ctx, filepath.Join(baseDir, name), stats, &mu); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// processDir handles one game subdirectory: bulk deletions first, then
// every archive at depth 1. The returned error is only ever a context
// error; everything else is recorded and skipped.
func (c *Cleaner) processDir(ctx context.Context, dir string, stats *Stats, mu *sync.Mutex) error {
	ok, err := afero.DirExists(c.fs, dir)
	if err != nil || !ok {
		c.log().Info("directory not found, skipping", "dir", dir)
		c.emit(ProgressEvent{Stage: StageDirMissing, Path: dir, Err: err})
		return nil
	}
	c.emit(ProgressEvent{Stage: StageScanningDir, Path: dir})

	c.removeBulkDirs(dir, stats, mu)

	infos, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		mu.Lock()
		stats.Failed++
		mu.Unlock()
		c.log().Warn("listing directory failed", "dir", dir, "error", err)
		return nil
	}
	paths := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Mode().IsRegular() && c.policy.MatchesArchive(info.Name()) {
			paths = append(paths, filepath.Join(dir, info.Name()))
		}
	}

	if c.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.workers)
		for _, path := range paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				c.processArchive(path, stats, mu)
				return nil
			})
		}
		return g.Wait()
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.processArchive(path, stats, mu)
	}
	return nil
}

// removeBulkDirs deletes the policy's bulk directories (e.g. video/) in
// one filesystem operation each, counting the freed bytes.
func (c *Cleaner) removeBulkDirs(dir string, stats *Stats, mu *sync.Mutex) {
	for _, name := range c.policy.BulkDirs {
		path := filepath.Join(dir, name)
		ok, err := afero.DirExists(c.fs, path)
		if err != nil || !ok {
			continue
		}
		freed, err := fsops.RemoveTree(c.fs, path)
		mu.Lock()
		if err != nil {
			stats.Failed++
			mu.Unlock()
			c.log().Warn("removing directory failed", "dir", path, "error", err)
			c.emit(ProgressEvent{Stage: StageArchiveFailed, Path: path, Err: err})
			continue
		}
		stats.BytesRemoved += freed
		mu.Unlock()
		c.log().Info("removed directory", "dir", path, "bytes", freed)
		c.emit(ProgressEvent{Stage: StageBulkRemoved, Path: path, Bytes: freed})
	}
}

// processArchive filters one archive and folds the outcome into the stats.
func (c *Cleaner) processArchive(path string, stats *Stats, mu *sync.Mutex) {
	c.emit(ProgressEvent{Stage: StageArchiveStart, Path: path})

	res, err := Filter(c.fs, path, c.policy,
		RebuildWithStrict(c.strict),
		RebuildWithLogger(c.logger),
	)

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		stats.Failed++
		c.log().Warn("skipping archive", "archive", path, "error", err)
		c.emit(ProgressEvent{Stage: StageArchiveFailed, Path: path, Err: err})
		return
	}
	stats.add(res)
	c.log().Info("archive processed", "archive", path, "files_removed", res.FilesRemoved, "bytes_removed", res.BytesRemoved)
	c.emit(ProgressEvent{Stage: StageArchiveDone, Path: path, Files: res.FilesRemoved, Bytes: res.BytesRemoved})
}
