package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadPairs parses a two-column key<TAB>value file. Blank lines and lines
// starting with '#' are skipped.
func ReadPairs(r io.Reader) ([]Pair, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var pairs []Pair
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read lookup pairs: %w", err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) != 2 {
			return nil, fmt.Errorf("read lookup pairs: line %d: expected 2 fields, got %d", line, len(record))
		}
		key := strings.TrimSpace(record[0])
		if key == "" {
			return nil, fmt.Errorf("read lookup pairs: line %d: empty key", line)
		}
		pairs = append(pairs, Pair{Key: key, Value: strings.TrimSpace(record[1])})
	}
	return pairs, nil
}
