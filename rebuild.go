package shrink

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Result reports what a rebuild removed. BytesRemoved is the summed
// uncompressed size of the removed entries, as recorded in the central
// directory; it is not the on-disk delta.
type Result struct {
	FilesRemoved int
	BytesRemoved uint64
}

// RebuildOption configures Rebuild.
type RebuildOption func(*rebuildConfig)

type rebuildConfig struct {
	strict bool
	logger *slog.Logger
}

// RebuildWithStrict makes a failed raw copy of a retained entry abort the
// rebuild with *EntryCopyError. By default the entry is dropped with a
// warning and the rebuild continues.
func RebuildWithStrict(strict bool) RebuildOption {
	return func(c *rebuildConfig) {
		c.strict = strict
	}
}

// RebuildWithLogger sets the logger for per-entry warnings.
func RebuildWithLogger(logger *slog.Logger) RebuildOption {
	return func(c *rebuildConfig) {
		c.logger = logger
	}
}

// Rebuild writes every entry outside the removal set into a sibling temp
// file using raw pass-through copies, verifies the result, and swaps it
// over the original. The removed entries' counts are returned.
//
// The kept entries are copied in original order with their compression
// method, sizes, CRC-32, and timestamps untouched; nothing is decoded.
// An empty removal set is a no-op that leaves the original file
// byte-for-byte untouched.
//
// Rebuild consumes the Archive: the read handle is closed when it returns,
// whether or not it succeeds. The temp file is removed on every error path
// up to the point where the original has been deleted; after that the temp
// file is the only copy of the kept entries and is preserved on failure.
func (a *Archive) Rebuild(rm *Removal, opts ...RebuildOption) (Result, error) {
	if a.zr == nil {
		return Result{}, ErrClosed
	}
	cfg := rebuildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger != nil {
		a.logger = cfg.logger
	}
	defer a.Close()

	if rm.Empty() {
		return Result{}, nil
	}
	res := Result{FilesRemoved: rm.Files(), BytesRemoved: rm.Bytes()}

	// The .tmp suffix keeps an orphaned temp file from matching the
	// archive extension on a later run.
	dir := filepath.Dir(a.path)
	tmp, err := afero.TempFile(a.fs, dir, ".shrink-*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("create temp archive in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			tmp.Close()
			_ = a.fs.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	kept := 0
	for i, f := range a.zr.File {
		if rm.Contains(i) {
			a.log().Debug("removing entry", "archive", a.path, "entry", f.Name)
			continue
		}
		if err := copyRaw(zw, f); err != nil {
			if cfg.strict {
				zw.Close()
				return Result{}, &EntryCopyError{Index: i, Name: f.Name, Err: err}
			}
			a.log().Warn("dropping unreadable entry", "archive", a.path, "entry", f.Name, "error", err)
			continue
		}
		kept++
	}
	if err := zw.Close(); err != nil {
		return Result{}, fmt.Errorf("finalize %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close %s: %w", tmpPath, err)
	}

	if err := verifyRebuilt(a.fs, tmpPath, kept); err != nil {
		return Result{}, fmt.Errorf("verify rebuilt archive: %w", err)
	}

	// Release the read handle before touching the original; some platforms
	// refuse to remove a file that is still open.
	if err := a.Close(); err != nil {
		return Result{}, fmt.Errorf("close %s: %w", a.path, err)
	}
	if err := a.fs.Remove(a.path); err != nil {
		return Result{}, fmt.Errorf("remove original %s: %w", a.path, err)
	}
	cleanup = false // the temp file is now the only copy of the kept entries
	if err := a.fs.Rename(tmpPath, a.path); err != nil {
		return Result{}, fmt.Errorf("rename %s to %s: %w (kept entries remain at %s)", tmpPath, a.path, err, tmpPath)
	}
	return res, nil
}

// copyRaw transfers one entry's compressed byte stream and header verbatim.
func copyRaw(zw *zip.Writer, f *zip.File) error {
	raw, err := f.OpenRaw()
	if err != nil {
		return err
	}
	hdr := f.FileHeader
	w, err := zw.CreateRaw(&hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, raw)
	return err
}

// verifyRebuilt confirms the temp archive is independently readable and
// holds exactly the kept entries before the original is replaced.
func verifyRebuilt(fsys afero.Fs, path string, want int) error {
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return err
	}
	if len(zr.File) != want {
		return fmt.Errorf("rebuilt archive has %d entries, want %d", len(zr.File), want)
	}
	return nil
}

// Filter runs the Open → Plan → Rebuild pipeline for a single archive.
func Filter(fsys afero.Fs, path string, policy Policy, opts ...RebuildOption) (Result, error) {
	a, err := Open(fsys, path)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()

	rm, err := a.Plan(policy)
	if err != nil {
		return Result{}, err
	}
	return a.Rebuild(rm, opts...)
}
