package shrink

import (
	"slices"
	"strings"
)

// Policy decides which archive entries are removable and which on-disk
// directories are bulk-deleted. It is plain configuration: the zero value
// removes nothing, and the CLI can populate it from a config file.
type Policy struct {
	// Dirs lists top-level directory names inside an archive whose entries
	// are removed. Matching is an exact, case-sensitive first-segment
	// comparison: "images" matches "images/hud/icon.iwi" but not
	// "imagesbackup/foo.dat".
	Dirs []string `json:"dirs" yaml:"dirs" mapstructure:"dirs"`

	// Extensions lists file extensions (without the dot, case-sensitive)
	// whose entries are removed wherever they appear.
	Extensions []string `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// BulkDirs lists subdirectory names that the cleaner deletes outright
	// from the filesystem instead of filtering archive by archive.
	BulkDirs []string `json:"bulk_dirs" yaml:"bulk_dirs" mapstructure:"bulk_dirs"`

	// ArchiveExt is the filename suffix identifying container files to
	// process, including the dot.
	ArchiveExt string `json:"archive_ext" yaml:"archive_ext" mapstructure:"archive_ext"`
}

// DefaultPolicy returns the stock IW4x policy: drop textures, sound, and
// video from .iwd archives, and delete the video directory wholesale.
func DefaultPolicy() Policy {
	return Policy{
		Dirs:       []string{"images", "sound", "video"},
		Extensions: []string{"iwi", "mp3"},
		BulkDirs:   []string{"video"},
		ArchiveExt: ".iwd",
	}
}

// Removable reports whether the entry name matches the policy. The name is
// treated as a slash-separated relative path; the two checks are a logical
// OR, so their order does not matter.
func (p Policy) Removable(name string) bool {
	seg := name
	if i := strings.IndexByte(name, '/'); i >= 0 {
		seg = name[:i]
	}
	if slices.Contains(p.Dirs, seg) {
		return true
	}

	base := name
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		base = name[i+1:]
	}
	if j := strings.LastIndexByte(base, '.'); j >= 0 {
		return slices.Contains(p.Extensions, base[j+1:])
	}
	return false
}

// MatchesArchive reports whether a file name identifies a container this
// policy processes. An empty ArchiveExt matches nothing.
func (p Policy) MatchesArchive(name string) bool {
	return p.ArchiveExt != "" && strings.HasSuffix(name, p.ArchiveExt)
}
