package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jonathan/jobmarket/internal/parsing"
	internalschemas "github.com/jonathan/jobmarket/internal/schemas"
	"github.com/jonathan/jobmarket/schemas"
)

var (
	rawRecordsOnce      sync.Once
	rawRecordsValidator *internalschemas.Validator
	rawRecordsErr       error
)

func rawRecordsSchema() (*internalschemas.Validator, error) {
	rawRecordsOnce.Do(func() {
		rawRecordsValidator, rawRecordsErr = internalschemas.NewValidator("raw_records.schema.json", schemas.RawRecords)
	})
	return rawRecordsValidator, rawRecordsErr
}

// LoadFile reads a batch of raw records from a JSON file holding either an
// array of record objects or a search response envelope {"data": [...]}.
func LoadFile(path string) ([]parsing.RawRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	return ParseRecords(path, content)
}

// ParseRecords validates and decodes a JSON batch. name identifies the
// document in errors.
func ParseRecords(name string, content []byte) ([]parsing.RawRecord, error) {
	validator, err := rawRecordsSchema()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(name, content); err != nil {
		return nil, err
	}

	content = bytes.TrimSpace(content)
	if len(content) > 0 && content[0] == '{' {
		var envelope searchResponse
		if err := decodeJSON(content, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		return envelope.Data, nil
	}

	var records []parsing.RawRecord
	if err := decodeJSON(content, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return records, nil
}

// decodeJSON keeps numbers as json.Number so large salaries survive intact.
func decodeJSON(content []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	return dec.Decode(v)
}
