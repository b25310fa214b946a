// Package standards imports qualifying time standards from CSV files.
package standards

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/swimlog/internal/form"
	"github.com/verte-zerg/swimlog/internal/model"
)

// Columns is the expected CSV column order.
var Columns = []string{"set", "name", "event", "course", "gender", "age_min", "age_max", "time"}

// LoadCSV reads standards from the CSV file at path.
func LoadCSV(path string) ([]model.Standard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open standards: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return ReadCSV(file)
}

// ReadCSV parses standards rows. A leading header row and lines starting
// with # are skipped.
func ReadCSV(r io.Reader) ([]model.Standard, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = len(Columns)
	reader.TrimLeadingSpace = true

	var out []model.Standard
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read standards: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), Columns[0]) {
				continue
			}
		}
		std, errs := form.StandardInput{
			Set:    record[0],
			Name:   record[1],
			Event:  record[2],
			Course: record[3],
			Gender: record[4],
			AgeMin: record[5],
			AgeMax: record[6],
			Time:   record[7],
		}.Validate()
		if err := errs.Err(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, std)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("standards file is empty")
	}
	return out, nil
}
