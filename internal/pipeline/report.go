package pipeline

import (
	"fmt"

	"kncleanup/internal/resolver"
	"kncleanup/internal/table"
)

// MappingStatus classifies one input row after resolution.
type MappingStatus string

const (
	StatusMapped       MappingStatus = "mapped"
	StatusDuplicate    MappingStatus = "duplicate ensembl name"
	StatusUnmappedNone MappingStatus = resolver.SentinelNone
	StatusUnmappedMany MappingStatus = resolver.SentinelMany
)

// MappingEntry is the audit record for one input row.
type MappingEntry struct {
	UserLabel string
	ID        resolver.CanonicalID
	Status    MappingStatus
}

// AuditStatus is the value written in the audit report: the canonical ID for
// mapped rows, the status text otherwise.
func (e MappingEntry) AuditStatus() string {
	if e.Status == StatusMapped {
		return e.ID.ID()
	}
	return string(e.Status)
}

// MappingReport lists every input row exactly once, in input order.
type MappingReport struct {
	Entries []MappingEntry
}

func (r *MappingReport) count(status MappingStatus) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

func (r *MappingReport) Mapped() int { return r.count(StatusMapped) }

func (r *MappingReport) Duplicates() int { return r.count(StatusDuplicate) }

func (r *MappingReport) Unmapped() int {
	return r.count(StatusUnmappedNone) + r.count(StatusUnmappedMany)
}

// UnmappedEntries returns the rows that did not resolve.
func (r *MappingReport) UnmappedEntries() []MappingEntry {
	if r == nil {
		return nil
	}
	var out []MappingEntry
	for _, e := range r.Entries {
		if e.Status == StatusUnmappedNone || e.Status == StatusUnmappedMany {
			out = append(out, e)
		}
	}
	return out
}

// MappedEntries returns the first row for every canonical ID, which is the
// content of the map file.
func (r *MappingReport) MappedEntries() []MappingEntry {
	if r == nil {
		return nil
	}
	var out []MappingEntry
	for _, e := range r.Entries {
		if e.Status == StatusMapped {
			out = append(out, e)
		}
	}
	return out
}

// Partition splits the rows of t according to records, which must hold one
// record per row in row order. Unmapped rows and rows whose canonical ID
// repeats an earlier row are dropped; survivors are relabelled with their ID.
func Partition(t *table.Table, records []resolver.Record) (*table.Table, *MappingReport, error) {
	rows, _ := t.Shape()
	if len(records) != rows {
		return nil, nil, fmt.Errorf("partition: %d records for %d rows", len(records), rows)
	}
	report := &MappingReport{Entries: make([]MappingEntry, 0, rows)}
	keep := make([]int, 0, rows)
	labels := make([]string, 0, rows)
	seen := make(map[string]struct{}, rows)

	for i, rec := range records {
		entry := MappingEntry{UserLabel: t.RowLabel(i), ID: rec.ID}
		switch rec.ID.Outcome() {
		case resolver.OutcomeUnmappedMany:
			entry.Status = StatusUnmappedMany
		case resolver.OutcomeUnmappedNone:
			entry.Status = StatusUnmappedNone
		default:
			if _, dup := seen[rec.ID.ID()]; dup {
				entry.Status = StatusDuplicate
				break
			}
			seen[rec.ID.ID()] = struct{}{}
			entry.Status = StatusMapped
			keep = append(keep, i)
			labels = append(labels, rec.ID.ID())
		}
		report.Entries = append(report.Entries, entry)
	}

	cleaned, err := t.SelectRows(keep).WithRowLabels(labels)
	if err != nil {
		return nil, nil, fmt.Errorf("partition: %w", err)
	}
	return cleaned, report, nil
}
