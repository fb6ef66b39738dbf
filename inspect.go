package shrink

// Removal is the set of entry indices selected for removal from one
// archive, plus the summed uncompressed size of those entries. It is
// computed once by Plan and consumed once by Rebuild.
type Removal struct {
	indices map[int]struct{}
	bytes   uint64
}

// Empty reports whether no entries were selected.
func (r *Removal) Empty() bool { return r == nil || len(r.indices) == 0 }

// Contains reports whether entry index i is selected for removal.
func (r *Removal) Contains(i int) bool {
	if r == nil {
		return false
	}
	_, ok := r.indices[i]
	return ok
}

// Files returns the number of selected entries.
func (r *Removal) Files() int {
	if r == nil {
		return 0
	}
	return len(r.indices)
}

// Bytes returns the summed uncompressed size of the selected entries.
func (r *Removal) Bytes() uint64 {
	if r == nil {
		return 0
	}
	return r.bytes
}

// Classify selects the entries matching the policy. It is pure: no I/O,
// deterministic for a given entry list and policy.
func Classify(entries []Entry, policy Policy) *Removal {
	rm := &Removal{indices: make(map[int]struct{})}
	for _, e := range entries {
		if policy.Removable(e.Name) {
			rm.indices[e.Index] = struct{}{}
			rm.bytes += e.UncompressedSize
		}
	}
	return rm
}

// Plan validates that every entry's local record is locatable, then
// classifies the entries against the policy.
//
// An unreadable record aborts the plan with a *CorruptEntryError; the
// caller is expected to skip the archive, leaving the original untouched.
func (a *Archive) Plan(policy Policy) (*Removal, error) {
	if a.zr == nil {
		return nil, ErrClosed
	}
	for i, f := range a.zr.File {
		if _, err := f.DataOffset(); err != nil {
			return nil, &CorruptEntryError{Index: i, Name: f.Name, Err: err}
		}
	}
	return Classify(a.Entries(), policy), nil
}
