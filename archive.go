package shrink

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Entry describes one record in an archive's central directory.
//
// Index is the 0-based central-directory position and is stable only for
// the lifetime of the Archive that produced it.
type Entry struct {
	Index            int
	Name             string
	Method           uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
}

// Archive is an open, read-only view of a zip container.
//
// The underlying file stays open until Close or Rebuild; Rebuild consumes
// the Archive and replaces the file on disk.
type Archive struct {
	fs     afero.Fs
	path   string
	f      afero.File
	zr     *zip.Reader
	logger *slog.Logger
}

// Open opens the archive at path read-only and parses its central directory.
//
// Format errors satisfy errors.Is(err, ErrNotArchive). Open never mutates
// the file.
func Open(fsys afero.Fs, path string) (*Archive, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive %s: %w", path, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		if errors.Is(err, zip.ErrFormat) {
			err = fmt.Errorf("%w: %w", ErrNotArchive, err)
		}
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	return &Archive{fs: fsys, path: path, f: f, zr: zr}, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Path returns the filesystem path the archive was opened from.
func (a *Archive) Path() string { return a.path }

// Len returns the number of entries in the central directory.
func (a *Archive) Len() int {
	if a.zr == nil {
		return 0
	}
	return len(a.zr.File)
}

// Entries returns metadata for every entry in central-directory order.
// The enumeration is total: it either lists all entries or the archive
// failed to open in the first place.
func (a *Archive) Entries() []Entry {
	if a.zr == nil {
		return nil
	}
	entries := make([]Entry, len(a.zr.File))
	for i, f := range a.zr.File {
		entries[i] = Entry{
			Index:            i,
			Name:             f.Name,
			Method:           f.Method,
			CRC32:            f.CRC32,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
		}
	}
	return entries
}

// Close releases the read handle. Closing twice is a no-op.
func (a *Archive) Close() error {
	if a.f == nil {
		return nil
	}
	f := a.f
	a.f = nil
	a.zr = nil
	return f.Close()
}
