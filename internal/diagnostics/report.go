package diagnostics

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// Outcome keys used in the persisted log file.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFail    = "FAIL"
)

// Encode writes the log as a single-key YAML document mapping SUCCESS or FAIL
// to the ordered messages.
func Encode(w io.Writer, succeeded bool, l *Log) error {
	key := OutcomeFail
	if succeeded {
		key = OutcomeSuccess
	}
	messages := l.Messages()
	if messages == nil {
		messages = []string{}
	}
	data, err := yaml.Marshal(map[string][]string{key: messages})
	if err != nil {
		return fmt.Errorf("encode diagnostic log: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write diagnostic log: %w", err)
	}
	return nil
}

// Decode reads a log file written by Encode.
func Decode(r io.Reader) (succeeded bool, messages []string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return false, nil, fmt.Errorf("read diagnostic log: %w", err)
	}
	var doc map[string][]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, nil, fmt.Errorf("parse diagnostic log: %w", err)
	}
	if msgs, ok := doc[OutcomeSuccess]; ok {
		return true, msgs, nil
	}
	if msgs, ok := doc[OutcomeFail]; ok {
		return false, msgs, nil
	}
	return false, nil, fmt.Errorf("parse diagnostic log: missing %s or %s key", OutcomeSuccess, OutcomeFail)
}
