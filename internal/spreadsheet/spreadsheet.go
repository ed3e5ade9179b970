package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"kncleanup/internal/dedup"
	"kncleanup/internal/diagnostics"
	"kncleanup/internal/table"
)

// ErrEmpty reports input without a header or without data rows.
var ErrEmpty = errors.New("spreadsheet is empty")

// Load reads path into a table and drops rows that are entirely NA. Loader
// failures are recorded in log and returned as a rejection.
func Load(path string, log *diagnostics.Log) table.Result {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		log.Errorf("Input file path is not valid: %s. Please provide a valid input path.", path)
		return table.Reject("invalid input path")
	}

	t, err := Read(path)
	if err != nil {
		if errors.Is(err, ErrEmpty) {
			log.Errorf("Input data %s is empty. Please provide a valid input data.", path)
			return table.Reject("empty input")
		}
		log.Errorf("Unable to read input data %s: %v", path, err)
		return table.Reject("unreadable input")
	}
	rows, cols := t.Shape()
	log.Infof("Successfully loaded input data: %s with %d row(s) and %d column(s)", path, rows, cols)
	return dedup.RemoveFullyEmptyRows(t, log)
}

// Read parses path without logging. Workbooks are recognised by extension.
func Read(path string) (*table.Table, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	return fromRecords(records)
}

// LoadList reads a gene list: a header line, then one identifier per line in
// the first field. The list becomes the row labels of a table with no
// columns. Missing labels are kept for the caller to drop.
func LoadList(path string, log *diagnostics.Log) table.Result {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		log.Errorf("Input file path is not valid: %s. Please provide a valid input path.", path)
		return table.Reject("invalid input path")
	}
	labels, err := ReadList(path)
	if err != nil {
		log.Errorf("Unable to read input data %s: %v", path, err)
		return table.Reject("unreadable input")
	}
	log.Infof("Successfully load spreadsheet data: %s with %d gene(s).", path, len(labels))
	t, err := table.New(labels, nil, make([][]table.Cell, len(labels)))
	if err != nil {
		log.Errorf("Unable to read input data %s: %v", path, err)
		return table.Reject("unreadable input")
	}
	return table.Accept(t)
}

// ReadList returns the first field of every line after the header. NA
// tokens become table.NaNLabel.
func ReadList(path string) ([]string, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	labels := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		label := strings.TrimSpace(rec[0])
		if table.IsNAToken(label) {
			label = table.NaNLabel
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return readTSVRecords(f)
	}
}

// ReadTSV parses tab-separated text. The first line is the header and its
// first cell (the index header) is discarded.
func ReadTSV(r io.Reader) (*table.Table, error) {
	records, err := readTSVRecords(r)
	if err != nil {
		return nil, err
	}
	return fromRecords(records)
}

func readTSVRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse tsv: %w", err)
	}
	return records, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func fromRecords(records [][]string) (*table.Table, error) {
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, ErrEmpty
	}

	header := records[0][1:]
	cols := make([]string, len(header))
	for j, h := range header {
		h = strings.TrimSpace(h)
		if table.IsNAToken(h) {
			h = ""
		}
		cols[j] = h
	}

	rows := make([]string, 0, len(records)-1)
	cells := make([][]table.Cell, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		label := strings.TrimSpace(rec[0])
		if table.IsNAToken(label) {
			label = table.NaNLabel
		}
		row := make([]table.Cell, len(cols))
		for j := range cols {
			if j+1 < len(rec) {
				row[j] = table.Parse(rec[j+1])
			}
		}
		rows = append(rows, label)
		cells = append(cells, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return table.New(rows, cols, cells)
}

// WriteTSV writes t with an empty index header cell followed by the column
// labels, then one line per row. NA cells are written as empty fields.
func WriteTSV(w io.Writer, t *table.Table) error {
	return WriteIndexedTSV(w, t, "")
}

// WriteIndexedTSV is WriteTSV with indexName in the index header cell.
func WriteIndexedTSV(w io.Writer, t *table.Table, indexName string) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := append([]string{indexName}, t.ColumnLabels()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rows, _ := t.Shape()
	for i := 0; i < rows; i++ {
		cells := t.Row(i)
		rec := make([]string, 0, len(cells)+1)
		rec = append(rec, t.RowLabel(i))
		for _, c := range cells {
			rec = append(rec, c.String())
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecords writes plain tab-separated records, optionally preceded by a
// header line.
func WriteRecords(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}
