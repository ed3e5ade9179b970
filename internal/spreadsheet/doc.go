// Package spreadsheet loads user spreadsheets (tab-separated text or the first
// sheet of an XLSX workbook) into labeled tables and writes tables back out as
// TSV.
package spreadsheet
