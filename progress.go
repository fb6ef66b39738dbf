package shrink

// ProgressStage identifies what a cleaner run is currently doing.
type ProgressStage uint8

const (
	// StageScanningDir indicates a game subdirectory is being processed.
	StageScanningDir ProgressStage = iota

	// StageDirMissing indicates a configured subdirectory does not exist
	// and was skipped.
	StageDirMissing

	// StageBulkRemoved indicates a bulk directory was deleted outright.
	StageBulkRemoved

	// StageArchiveStart indicates an archive is about to be filtered.
	StageArchiveStart

	// StageArchiveDone indicates an archive was filtered successfully.
	// Files and Bytes carry the removal counts (both zero for a clean
	// archive that was left untouched).
	StageArchiveDone

	// StageArchiveFailed indicates an archive was skipped due to an error.
	StageArchiveFailed
)

// ProgressEvent is a progress update emitted during a cleaner run.
type ProgressEvent struct {
	Stage ProgressStage
	Path  string
	Files int
	Bytes uint64
	Err   error
}

// ProgressFunc receives progress updates during a run.
// Implementations must be safe for concurrent calls when the cleaner is
// configured with more than one worker.
type ProgressFunc func(ProgressEvent)
