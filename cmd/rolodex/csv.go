package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/codeGROOVE-dev/rolodex/pkg/person"
)

// readBatch loads person queries from a CSV file. The header row names
// the columns; first_name and last_name are required, job_title,
// organization, and region are optional.
func readBatch(path string) ([]person.Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("batch file %s has no data rows", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"first_name", "last_name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("batch file missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	queries := make([]person.Query, 0, len(records)-1)
	for _, row := range records[1:] {
		queries = append(queries, person.Query{
			FirstName:    field(row, "first_name"),
			LastName:     field(row, "last_name"),
			JobTitle:     field(row, "job_title"),
			Organization: field(row, "organization"),
			Region:       field(row, "region"),
		})
	}
	return queries, nil
}
