package spreadsheet_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"kncleanup/internal/diagnostics"
	"kncleanup/internal/spreadsheet"
	"kncleanup/internal/table"
	"kncleanup/internal/testsupport"
)

func TestLoadTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.tsv")
	testsupport.WriteTSV(t, path,
		"\ts1\ts2\tNA",
		"BRCA1\t1\t2.5\tTrue",
		"NA\t3\t4\tx",
		"TP53\t5",
		"EMPTY\t\tNA\t",
	)
	log := diagnostics.New(nil)

	res := spreadsheet.Load(path, log)
	tbl, ok := res.Table()
	if !ok {
		t.Fatalf("load rejected: %q (%v)", res.Reason(), log.Messages())
	}
	testsupport.ColumnLabels(t, tbl, "s1", "s2", "")
	testsupport.RowLabels(t, tbl, "BRCA1", table.NaNLabel, "TP53")

	if got := tbl.At(0, 0).Kind(); got != table.KindInt {
		t.Fatalf("kind(0,0) = %v, want int", got)
	}
	if got := tbl.At(0, 2).Kind(); got != table.KindBool {
		t.Fatalf("kind(0,2) = %v, want bool", got)
	}
	if !tbl.At(2, 1).IsNA() || !tbl.At(2, 2).IsNA() {
		t.Fatalf("short row should be padded with NA")
	}
	testsupport.HasMessage(t, log.Messages(), "Successfully loaded input data: "+path+" with 4 row(s) and 3 column(s)")
	testsupport.HasMessage(t, log.Messages(), "Removed 1 empty row(s).")
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.tsv")
	log := diagnostics.New(nil)

	res := spreadsheet.Load(path, log)
	if !res.Rejected() {
		t.Fatal("expected rejection for missing file")
	}
	testsupport.HasMessage(t, log.Messages(), "Input file path is not valid: "+path)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tsv")
	testsupport.WriteTSV(t, path, "\ts1\ts2")
	log := diagnostics.New(nil)

	if res := spreadsheet.Load(path, log); !res.Rejected() {
		t.Fatal("expected rejection for header-only file")
	}
	testsupport.HasMessage(t, log.Messages(), "Input data "+path+" is empty")
	if !log.HasErrors() {
		t.Fatal("expected an error entry")
	}
}

func TestLoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.xlsx")
	f := excelize.NewFile()
	values := map[string]string{
		"B1": "s1", "C1": "s2",
		"A2": "BRCA1", "B2": "1", "C2": "2",
		"A3": "TP53", "B3": "0.5", "C3": "NA",
	}
	for cell, v := range values {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	res := spreadsheet.Load(path, diagnostics.New(nil))
	tbl, ok := res.Table()
	if !ok {
		t.Fatalf("load rejected: %q", res.Reason())
	}
	testsupport.ColumnLabels(t, tbl, "s1", "s2")
	testsupport.RowLabels(t, tbl, "BRCA1", "TP53")
	if v, _ := tbl.At(1, 0).Number(); v != 0.5 {
		t.Fatalf("TP53/s1 = %v, want 0.5", v)
	}
	if !tbl.At(1, 1).IsNA() {
		t.Fatal("NA token should load as missing")
	}
}

func TestWriteTSV(t *testing.T) {
	tbl := testsupport.Table(t,
		"\ts1\ts2",
		"ENSG1\t1\tNA",
		"ENSG2\t2.5\tx",
	)
	var buf bytes.Buffer
	if err := spreadsheet.WriteTSV(&buf, tbl); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}
	want := "\ts1\ts2\nENSG1\t1\t\nENSG2\t2.5\tx\n"
	if buf.String() != want {
		t.Fatalf("WriteTSV = %q, want %q", buf.String(), want)
	}

	back, err := spreadsheet.ReadTSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}
	testsupport.RowLabels(t, back, "ENSG1", "ENSG2")
	if !back.At(0, 1).IsNA() {
		t.Fatal("empty field should read back as NA")
	}
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	err := spreadsheet.WriteRecords(&buf, []string{"user_supplied_gene_name", "status"}, [][]string{{"brca1", "ENSG1"}})
	if err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	if want := "user_supplied_gene_name\tstatus\nbrca1\tENSG1\n"; buf.String() != want {
		t.Fatalf("WriteRecords = %q, want %q", buf.String(), want)
	}
}

func TestLoadListKeepsFirstField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pasted.txt")
	testsupport.WriteTSV(t, path, "gene\tnote", "BRCA1\tx", " TP53 ", "NA", "EGFR")
	log := diagnostics.New(nil)

	tbl, ok := spreadsheet.LoadList(path, log).Table()
	if !ok {
		t.Fatalf("expected list to load, got %v", log.Messages())
	}
	testsupport.RowLabels(t, tbl, "BRCA1", "TP53", table.NaNLabel, "EGFR")
	if _, cols := tbl.Shape(); cols != 0 {
		t.Fatalf("expected no columns, got %d", cols)
	}
	testsupport.HasMessage(t, log.Messages(), "with 4 gene(s).")
}

func TestLoadListMissingFile(t *testing.T) {
	log := diagnostics.New(nil)
	if res := spreadsheet.LoadList(filepath.Join(t.TempDir(), "missing.txt"), log); !res.Rejected() {
		t.Fatal("expected rejection")
	}
	testsupport.HasMessage(t, log.Messages(), "ERROR: Input file path is not valid: ")
}

func TestWriteIndexedTSV(t *testing.T) {
	var buf bytes.Buffer
	tbl := testsupport.Table(t, "\tgroup_A", "s1\t1", "s2\tNA")
	if err := spreadsheet.WriteIndexedTSV(&buf, tbl, "sample_id"); err != nil {
		t.Fatalf("WriteIndexedTSV: %v", err)
	}
	if want := "sample_id\tgroup_A\ns1\t1\ns2\t\n"; buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
