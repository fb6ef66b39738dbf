package shrink

// Stats aggregates the outcome of one cleaner run. BytesRemoved mixes
// uncompressed entry sizes (from archive rebuilds) with on-disk sizes
// (from bulk directory deletion), matching what the numbers mean to the
// user: how much content went away.
type Stats struct {
	// Archives is the number of archives that were rebuilt or confirmed
	// clean.
	Archives int

	// FilesRemoved counts removed archive entries.
	FilesRemoved int

	// BytesRemoved sums the removed entries' uncompressed sizes plus the
	// sizes of bulk-deleted directories.
	BytesRemoved uint64

	// Failed is the number of archives and bulk directories that were
	// skipped because of an error.
	Failed int
}

// add merges a per-archive result into the totals.
func (s *Stats) add(r Result) {
	s.Archives++
	s.FilesRemoved += r.FilesRemoved
	s.BytesRemoved += r.BytesRemoved
}
