package artifacts

import (
	"bytes"
	"fmt"
	"sort"

	"kncleanup/internal/diagnostics"
	"kncleanup/internal/pipeline"
	"kncleanup/internal/spreadsheet"
	"kncleanup/internal/textutil"
)

// Audit report kinds.
const (
	AuditUserToEnsembl = "user_to_ensembl"
	AuditUnmapped      = "unmapped"
)

// Artifact name suffixes.
const (
	SuffixETL           = "_ETL.tsv"
	SuffixMap           = "_MAP.tsv"
	SuffixUserToEnsembl = "_User_To_Ensembl.tsv"
	SuffixUnmapped      = "_UNMAPPED.tsv"
	SuffixLog           = "_log.yml"
)

var auditHeader = []string{"user_supplied_gene_name", "status"}

// File is one rendered artifact.
type File struct {
	Name string
	Data []byte
}

// Names carries the inputs artifact names derive from.
type Names struct {
	Spreadsheet string
	Phenotype   string
	AuditKind   string
}

// Render encodes out as artifacts. Cleaned tables and reports are only
// rendered for successful submissions; the log file is always rendered.
func Render(out *pipeline.Outcome, names Names) ([]File, error) {
	if out == nil {
		return nil, fmt.Errorf("render: nil outcome")
	}
	base := textutil.BaseName(names.Spreadsheet)
	var files []File

	if out.Succeeded() {
		etl, err := encodeTable(out)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: base + SuffixETL, Data: etl})

		if out.Map != nil {
			var buf bytes.Buffer
			if err := spreadsheet.WriteTSV(&buf, out.Map); err != nil {
				return nil, fmt.Errorf("render gene set map: %w", err)
			}
			files = append(files, File{Name: base + SuffixMap, Data: buf.Bytes()})
		}

		if out.Report != nil {
			mapData, err := encodeMap(out.Report)
			if err != nil {
				return nil, err
			}
			files = append(files, File{Name: base + SuffixMap, Data: mapData})

			auditName, auditData, err := encodeAudit(out.Report, names.AuditKind)
			if err != nil {
				return nil, err
			}
			files = append(files, File{Name: base + auditName, Data: auditData})
		}

		if out.Phenotype != nil {
			var buf bytes.Buffer
			if err := spreadsheet.WriteTSV(&buf, out.Phenotype); err != nil {
				return nil, fmt.Errorf("render phenotype: %w", err)
			}
			files = append(files, File{Name: textutil.BaseName(names.Phenotype) + SuffixETL, Data: buf.Bytes()})
		}
	}

	var logBuf bytes.Buffer
	if err := diagnostics.Encode(&logBuf, out.Succeeded(), out.Log); err != nil {
		return nil, err
	}
	files = append(files, File{Name: base + SuffixLog, Data: logBuf.Bytes()})
	return files, nil
}

func encodeTable(out *pipeline.Outcome) ([]byte, error) {
	var buf bytes.Buffer
	if err := spreadsheet.WriteIndexedTSV(&buf, out.Table, out.IndexName); err != nil {
		return nil, fmt.Errorf("render cleaned table: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeMap(report *pipeline.MappingReport) ([]byte, error) {
	entries := report.MappedEntries()
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{e.ID.ID(), e.UserLabel})
	}
	var buf bytes.Buffer
	if err := spreadsheet.WriteRecords(&buf, nil, records); err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeAudit(report *pipeline.MappingReport, kind string) (string, []byte, error) {
	suffix := SuffixUserToEnsembl
	entries := report.Entries
	if kind == AuditUnmapped {
		suffix = SuffixUnmapped
		entries = report.UnmappedEntries()
		// unmapped-none rows lead, then unmapped-many; input order within each.
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].AuditStatus() > entries[j].AuditStatus()
		})
	}
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{e.UserLabel, e.AuditStatus()})
	}
	var buf bytes.Buffer
	if err := spreadsheet.WriteRecords(&buf, auditHeader, records); err != nil {
		return "", nil, fmt.Errorf("render audit report: %w", err)
	}
	return suffix, buf.Bytes(), nil
}
