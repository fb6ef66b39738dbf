package shrink

import (
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	name   string
	data   string
	method uint16 // zero value is zip.Store
}

// writeTestArchive builds a zip container at path from the given entries,
// in order.
func writeTestArchive(t *testing.T, fsys afero.Fs, path string, entries []testEntry) {
	t.Helper()

	f, err := fsys.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		require.NoError(t, err)
		_, err = w.Write([]byte(e.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

type rawEntry struct {
	header zip.FileHeader
	raw    []byte
}

// readRawEntries returns every entry's header and raw (still compressed)
// byte stream, in central-directory order.
func readRawEntries(t *testing.T, fsys afero.Fs, path string) []rawEntry {
	t.Helper()

	f, err := fsys.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)
	zr, err := zip.NewReader(f, info.Size())
	require.NoError(t, err)

	out := make([]rawEntry, 0, len(zr.File))
	for _, zf := range zr.File {
		r, err := zf.OpenRaw()
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		out = append(out, rawEntry{header: zf.FileHeader, raw: data})
	}
	return out
}

// readArchiveContents decodes every entry, keyed by name.
func readArchiveContents(t *testing.T, fsys afero.Fs, path string) map[string]string {
	t.Helper()

	f, err := fsys.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)
	zr, err := zip.NewReader(f, info.Size())
	require.NoError(t, err)

	out := make(map[string]string, len(zr.File))
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[zf.Name] = string(data)
	}
	return out
}
