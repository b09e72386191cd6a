package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// Record is one row in field-name→value form. Values are float64 for
// numeric fields and string for categorical fields; missing cells are
// omitted from the map.
type Record map[string]interface{}

// Records normalizes heterogeneous tabular input into one Record per row,
// the representation consumed by preprocessing.DictVectorizer. It accepts
// either a *Table or a bare numeric matrix; matrix columns are named
// "x0", "x1", ... in order.
func Records(data interface{}) ([]Record, error) {
	switch v := data.(type) {
	case *Table:
		return v.Records(), nil
	case mat.Matrix:
		return matrixRecords(v), nil
	default:
		return nil, errors.NewValidationError("data", "expected *dataset.Table or mat.Matrix", fmt.Sprintf("%T", data))
	}
}

// Records converts the Table into one Record per row.
func (t *Table) Records() []Record {
	records := make([]Record, t.nRows)
	for i := range records {
		records[i] = make(Record, len(t.cols))
	}
	for _, c := range t.cols {
		for i := 0; i < t.nRows; i++ {
			if c.IsMissing(i) {
				continue
			}
			if c.Kind == Numeric {
				records[i][c.Name] = c.Floats[i]
			} else {
				records[i][c.Name] = c.Strings[i]
			}
		}
	}
	return records
}

func matrixRecords(m mat.Matrix) []Record {
	rows, cols := m.Dims()
	names := make([]string, cols)
	for j := range names {
		names[j] = fmt.Sprintf("x%d", j)
	}
	records := make([]Record, rows)
	for i := 0; i < rows; i++ {
		rec := make(Record, cols)
		for j := 0; j < cols; j++ {
			rec[names[j]] = m.At(i, j)
		}
		records[i] = rec
	}
	return records
}
