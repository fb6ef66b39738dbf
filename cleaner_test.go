package shrink

import (
	"context"
	"io/fs"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGameDir(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "game/main/video/intro.bik", []byte("0123456789"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "game/main/video/credits.bik", []byte("01234"), 0o644))

	writeTestArchive(t, fsys, "game/main/iw_00.iwd", []testEntry{
		{name: "a.cfg", data: "keep"},
		{name: "images/x.iwi", data: "0123456789"}, // 10 bytes removed
		{name: "sound/y.mp3", data: "012345"},      // 6 bytes removed
	})
	writeTestArchive(t, fsys, "game/main/iw_01.iwd", []testEntry{
		{name: "readme.txt", data: "clean archive"},
	})
	writeTestArchive(t, fsys, "game/iw4x/mod.iwd", []testEntry{
		{name: "weapon.iwi", data: "01234567"}, // 8 bytes removed
		{name: "mod.cfg", data: "keep"},
	})
	return fsys
}

func TestCleanerRun(t *testing.T) {
	t.Parallel()

	fsys := setupGameDir(t)
	cleanBefore, err := afero.ReadFile(fsys, "game/main/iw_01.iwd")
	require.NoError(t, err)

	c := NewCleaner(DefaultPolicy(), WithFs(fsys))
	stats, err := c.Run(context.Background(), "game")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Archives)
	assert.Equal(t, 3, stats.FilesRemoved)
	// 15 bytes of video files plus 10+6+8 bytes of archive entries.
	assert.Equal(t, uint64(15+24), stats.BytesRemoved)
	assert.Equal(t, 0, stats.Failed)

	// The video directory is gone.
	exists, err := afero.DirExists(fsys, "game/main/video")
	require.NoError(t, err)
	assert.False(t, exists)

	// The clean archive was not rewritten.
	cleanAfter, err := afero.ReadFile(fsys, "game/main/iw_01.iwd")
	require.NoError(t, err)
	assert.Equal(t, cleanBefore, cleanAfter)

	// The filtered archives kept only the right entries.
	assert.Equal(t, map[string]string{"a.cfg": "keep"},
		readArchiveContents(t, fsys, "game/main/iw_00.iwd"))
	assert.Equal(t, map[string]string{"mod.cfg": "keep"},
		readArchiveContents(t, fsys, "game/iw4x/mod.iwd"))
}

func TestCleanerRunParallel(t *testing.T) {
	t.Parallel()

	fsys := setupGameDir(t)
	c := NewCleaner(DefaultPolicy(), WithFs(fsys), WithWorkers(4))
	stats, err := c.Run(context.Background(), "game")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Archives)
	assert.Equal(t, 3, stats.FilesRemoved)
	assert.Equal(t, uint64(39), stats.BytesRemoved)
}

func TestCleanerFailureIsolation(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "game/main/broken.iwd", []byte("not a zip"), 0o644))
	writeTestArchive(t, fsys, "game/main/iw_00.iwd", []testEntry{
		{name: "images/x.iwi", data: "drop"},
		{name: "a.cfg", data: "keep"},
	})

	c := NewCleaner(DefaultPolicy(), WithFs(fsys))
	stats, err := c.Run(context.Background(), "game")
	require.NoError(t, err)

	// The broken archive contributes nothing and blocks nothing.
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Archives)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Equal(t, uint64(4), stats.BytesRemoved)

	broken, err := afero.ReadFile(fsys, "game/main/broken.iwd")
	require.NoError(t, err)
	assert.Equal(t, []byte("not a zip"), broken, "failed archive must be untouched")
	assert.Equal(t, map[string]string{"a.cfg": "keep"},
		readArchiveContents(t, fsys, "game/main/iw_00.iwd"))
}

func TestCleanerMissingSubdir(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeTestArchive(t, fsys, "game/main/iw_00.iwd", []testEntry{
		{name: "weapon.iwi", data: "drop"},
	})

	// iw4x/ does not exist; the run still succeeds.
	c := NewCleaner(DefaultPolicy(), WithFs(fsys))
	stats, err := c.Run(context.Background(), "game")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Equal(t, 0, stats.Failed)
}

func TestCleanerMissingBase(t *testing.T) {
	t.Parallel()

	c := NewCleaner(DefaultPolicy(), WithFs(afero.NewMemMapFs()))
	_, err := c.Run(context.Background(), "nonexistent")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCleanerCanceled(t *testing.T) {
	t.Parallel()

	fsys := setupGameDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCleaner(DefaultPolicy(), WithFs(fsys))
	_, err := c.Run(ctx, "game")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCleanerProgress(t *testing.T) {
	t.Parallel()

	fsys := setupGameDir(t)

	var mu sync.Mutex
	counts := make(map[ProgressStage]int)
	c := NewCleaner(DefaultPolicy(), WithFs(fsys), WithProgress(func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[ev.Stage]++
	}))
	stats, err := c.Run(context.Background(), "game")
	require.NoError(t, err)
	require.Equal(t, 0, stats.Failed)

	assert.Equal(t, 2, counts[StageScanningDir])
	assert.Equal(t, 1, counts[StageBulkRemoved])
	assert.Equal(t, 3, counts[StageArchiveStart])
	assert.Equal(t, 3, counts[StageArchiveDone])
	assert.Equal(t, 0, counts[StageArchiveFailed])
}

func TestCleanerIgnoresTempFiles(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeTestArchive(t, fsys, "game/main/iw_00.iwd", []testEntry{
		{name: "images/x.iwi", data: "drop"},
	})
	// An orphan from an interrupted rebuild must not be picked up as an
	// archive on the next run.
	require.NoError(t, afero.WriteFile(fsys, "game/main/.shrink-999.tmp", []byte("partial zip"), 0o644))

	c := NewCleaner(DefaultPolicy(), WithFs(fsys))
	stats, err := c.Run(context.Background(), "game")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Archives)
	assert.Equal(t, 0, stats.Failed)

	orphan, err := afero.ReadFile(fsys, "game/main/.shrink-999.tmp")
	require.NoError(t, err)
	assert.Equal(t, []byte("partial zip"), orphan)
}

func TestCleanerCustomDirs(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeTestArchive(t, fsys, "game/usermaps/pack.iwd", []testEntry{
		{name: "images/x.iwi", data: "drop"},
	})
	writeTestArchive(t, fsys, "game/main/iw_00.iwd", []testEntry{
		{name: "images/y.iwi", data: "should not be touched"},
	})

	c := NewCleaner(DefaultPolicy(), WithFs(fsys), WithDirs("usermaps"))
	stats, err := c.Run(context.Background(), "game")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesRemoved)

	// main/ was outside the configured dirs.
	contents := readArchiveContents(t, fsys, "game/main/iw_00.iwd")
	assert.Contains(t, contents, "images/y.iwi")
}
