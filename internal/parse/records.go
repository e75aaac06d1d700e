package parse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a college seed file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// CollegeRecord is one college as it appears in a seed file.
type CollegeRecord struct {
	Name     string `yaml:"name"`
	City     string `yaml:"city"`
	State    string `yaml:"state"`
	NIRFRank string `yaml:"nirfRank"`
	Rank     string `yaml:"rank"`
}

// Valid reports whether the record carries every required field.
func (r CollegeRecord) Valid() bool {
	return strings.TrimSpace(r.Name) != "" &&
		strings.TrimSpace(r.City) != "" &&
		strings.TrimSpace(r.State) != ""
}

// DetectFormat guesses the format from a file name or URL path.
func DetectFormat(name string) (Format, error) {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("cannot infer seed format from %q", name)
}

// ParseColleges decodes every record in r. Fields are trimmed but not
// otherwise validated; callers decide what to do with incomplete records.
func ParseColleges(r io.Reader, format Format) ([]CollegeRecord, error) {
	var (
		records []CollegeRecord
		err     error
	)
	switch format {
	case FormatYAML:
		records, err = parseYAML(r)
	case FormatCSV:
		records, err = parseCSV(r)
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}
	if err != nil {
		return nil, err
	}

	for i := range records {
		records[i].Name = strings.TrimSpace(records[i].Name)
		records[i].City = strings.TrimSpace(records[i].City)
		records[i].State = strings.TrimSpace(records[i].State)
		records[i].NIRFRank = strings.TrimSpace(records[i].NIRFRank)
		records[i].Rank = strings.TrimSpace(records[i].Rank)
	}
	return records, nil
}

// parseYAML accepts either a bare list or a document with a top-level
// "colleges" list.
func parseYAML(r io.Reader) ([]CollegeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var list []CollegeRecord
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc struct {
		Colleges []CollegeRecord `yaml:"colleges"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode yaml seed: %w", err)
	}
	return doc.Colleges, nil
}

var csvColumns = map[string]string{
	"name":      "name",
	"city":      "city",
	"state":     "state",
	"nirfrank":  "nirfRank",
	"nirf_rank": "nirfRank",
	"nirf rank": "nirfRank",
	"rank":      "rank",
}

func parseCSV(r io.Reader) ([]CollegeRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int)
	for i, col := range header {
		if field, ok := csvColumns[strings.ToLower(strings.TrimSpace(col))]; ok {
			index[field] = i
		}
	}
	for _, required := range []string{"name", "city", "state"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", required)
		}
	}

	cell := func(row []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []CollegeRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		records = append(records, CollegeRecord{
			Name:     cell(row, "name"),
			City:     cell(row, "city"),
			State:    cell(row, "state"),
			NIRFRank: cell(row, "nirfRank"),
			Rank:     cell(row, "rank"),
		})
	}
	return records, nil
}
