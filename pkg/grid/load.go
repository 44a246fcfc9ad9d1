package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ib-77/gridsum/pkg/types"
)

type yamlGrid struct {
	Rows []*[]float64 `yaml:"rows"`
}

// LoadYAML reads a document of the form
//
//	rows:
//	  - [1, 2]
//	  - [3, 4]
//
// A null row is rejected as absent.
func LoadYAML(r io.Reader) (*Grid, error) {
	var doc yamlGrid
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Grid{}, nil
		}
		return nil, fmt.Errorf("%w: decode grid: %v", types.ErrInvalidArgument, err)
	}

	rows := make([][]float64, len(doc.Rows))
	for i, row := range doc.Rows {
		if row == nil {
			return nil, fmt.Errorf("%w: row %d is absent", types.ErrInvalidArgument, i)
		}
		rows[i] = *row
		if rows[i] == nil {
			rows[i] = []float64{}
		}
	}
	return &Grid{rows: rows}, nil
}

// LoadCSV reads one row per record. Records may have different field counts.
func LoadCSV(r io.Reader) (*Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]float64
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %v", types.ErrInvalidArgument, err)
		}

		row := make([]float64, 0, len(rec))
		for j, field := range rec {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %v", types.ErrInvalidArgument, len(rows), j, err)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return &Grid{rows: rows}, nil
}
