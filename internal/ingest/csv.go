package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/equipstat/equipstat/internal/apierror"
)

// RequiredColumns are matched against the header exactly and
// case-sensitively; column order does not matter.
var RequiredColumns = []string{"Equipment Name", "Type", "Flowrate", "Pressure", "Temperature"}

// Row is one parsed and coerced CSV line.
type Row struct {
	Name        string
	Type        string
	Flowrate    float64
	Pressure    float64
	Temperature float64
}

// ParseCSV reads the whole stream and returns the coerced rows. Any failure
// is a validation error: an unreadable file, missing required columns
// (all of them are named in the message), or a metric that does not parse
// as a float.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apierror.NewValidationError("csv file is empty")
	}
	if err != nil {
		return nil, apierror.WrapValidationError("failed to parse csv", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apierror.NewValidationError("missing required columns: %s", strings.Join(missing, ", "))
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apierror.WrapValidationError(fmt.Sprintf("failed to parse csv line %d", line), err)
		}

		row := Row{
			Name: record[columns["Equipment Name"]],
			Type: record[columns["Type"]],
		}
		if row.Flowrate, err = parseMetric(record[columns["Flowrate"]], "Flowrate", line); err != nil {
			return nil, err
		}
		if row.Pressure, err = parseMetric(record[columns["Pressure"]], "Pressure", line); err != nil {
			return nil, err
		}
		if row.Temperature, err = parseMetric(record[columns["Temperature"]], "Temperature", line); err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func parseMetric(raw, column string, line int) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apierror.NewValidationError("invalid %s value %q on line %d", column, raw, line)
	}
	return value, nil
}
