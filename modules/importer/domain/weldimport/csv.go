package weldimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
)

// ErrMissingHeaders is the fatal whole-file failure for an unusable header
// row, reported before any row-level processing.
var ErrMissingHeaders = errors.New("required columns are missing")

// ReadCSV parses header-driven weld rows. Headers are matched exactly after
// trimming; unrecognized headers are preserved per row in Extra. Row numbers
// are assigned as dataIndex+2 so they line up with spreadsheet line numbers.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrMissingHeaders, "empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := checkRequiredHeaders(header); err != nil {
		return nil, err
	}

	var rows []Row
	for dataIndex := 0; ; dataIndex++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", dataIndex+2, err)
		}
		rows = append(rows, rowFromRecord(header, record, dataIndex+2))
	}
	return rows, nil
}

func checkRequiredHeaders(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, required := range requiredColumns {
		if _, ok := present[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrMissingHeaders, "%s", strings.Join(missing, ", "))
	}
	return nil
}

func rowFromRecord(header, record []string, number int) Row {
	row := Row{Number: number}
	for i, name := range header {
		if i >= len(record) {
			break
		}
		value := strings.TrimSpace(record[i])
		switch name {
		case ColumnWeldID:
			row.WeldID = value
		case ColumnDrawingNumber:
			row.DrawingNumber = value
		case ColumnWeldType:
			row.WeldType = value
		case ColumnSize:
			row.Size = value
		case ColumnSchedule:
			row.Schedule = value
		case ColumnSpecCode:
			row.SpecCode = value
		case ColumnWelderStencil:
			row.WelderStencil = value
		case ColumnDateWelded:
			row.DateWelded = value
		case ColumnNDEResult:
			row.NDEResult = value
		case ColumnXRayPercent:
			row.XRayPercent = value
		case ColumnComments:
			row.Comments = value
		default:
			if value == "" {
				continue
			}
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[name] = value
		}
	}
	return row
}
