// Package pipeline composes label deduplication, value validation, phenotype
// checks and identifier resolution into the per-submission cleaning sequence.
//
// Each run owns its diagnostics log and ends in exactly one of three states:
// SUCCESS with a cleaned table re-indexed by canonical ID, REJECTED when the
// data failed a check, or ABORTED when the system could not complete the run.
// Rejections are ordinary results; aborts also return an error so callers can
// tell bad input apart from infrastructure failure.
package pipeline
