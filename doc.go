// Package shrink filters IW4x game archives (.iwd files, which are plain
// zip containers) by removing entries that match a removal policy, without
// re-encoding anything that stays.
//
// The pipeline per archive is Open → Plan → Rebuild. Open reads the central
// directory, Plan classifies entries against a [Policy] and returns the
// [Removal] set, and Rebuild writes the kept entries into a sibling temp
// file using raw pass-through copies (compression method, sizes, and CRC-32
// preserved verbatim), verifies the result, and swaps it into place. An
// empty removal set leaves the original file byte-for-byte untouched.
//
// [Cleaner] is the orchestrator: it walks the configured game
// subdirectories, bulk-deletes directories like video/, runs the pipeline
// over every archive it finds, and aggregates the freed file and byte
// counts. Archives are independent; a failure in one never stops the run.
//
// All filesystem access goes through afero, so the whole package is
// testable against an in-memory filesystem.
package shrink
