package shrink

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotArchive is returned when a file is not a readable zip container.
	ErrNotArchive = errors.New("shrink: not a zip archive")

	// ErrClosed is returned when an operation is attempted on a closed archive.
	ErrClosed = errors.New("shrink: archive is closed")
)

// CorruptEntryError is returned by Plan when an entry's local record cannot
// be located. The whole archive is skipped; the original file is untouched.
type CorruptEntryError struct {
	Index int
	Name  string
	Err   error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("corrupt entry %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *CorruptEntryError) Unwrap() error { return e.Err }

// EntryCopyError is returned by Rebuild in strict mode when a retained
// entry's raw bytes cannot be copied. In the default best-effort mode the
// entry is dropped with a warning instead.
type EntryCopyError struct {
	Index int
	Name  string
	Err   error
}

func (e *EntryCopyError) Error() string {
	return fmt.Sprintf("copy entry %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *EntryCopyError) Unwrap() error { return e.Err }
