package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/model"
	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// LabelEncoder maps string categories to integer codes, compatible with
// scikit-learn's LabelEncoder. Codes are assigned in sorted category order
// so that fitting is deterministic.
type LabelEncoder struct {
	model.BaseEstimator

	// ClassesList holds the categories in code order.
	ClassesList []string

	codes map[string]int
}

// NewLabelEncoder creates a new LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the category vocabulary.
func (le *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}

	le.ClassesList = make([]string, 0, len(seen))
	for v := range seen {
		le.ClassesList = append(le.ClassesList, v)
	}
	sort.Strings(le.ClassesList)

	le.codes = make(map[string]int, len(le.ClassesList))
	for i, v := range le.ClassesList {
		le.codes[v] = i
	}

	le.SetFitted()
	return nil
}

// Transform maps categories to their integer codes. A category not seen
// during fitting is an error.
func (le *LabelEncoder) Transform(values []string) ([]int, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	out := make([]int, len(values))
	for i, v := range values {
		code, ok := le.codes[v]
		if !ok {
			return nil, errors.Wrapf(errors.ErrUnknownCategory, "LabelEncoder.Transform: %q", v)
		}
		out[i] = code
	}
	return out, nil
}

// FitTransform fits the encoder and transforms the same values.
func (le *LabelEncoder) FitTransform(values []string) ([]int, error) {
	if err := le.Fit(values); err != nil {
		return nil, err
	}
	return le.Transform(values)
}

// InverseTransform maps integer codes back to categories.
func (le *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	out := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(le.ClassesList) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform",
				fmt.Sprintf("code %d out of range [0, %d)", code, len(le.ClassesList)))
		}
		out[i] = le.ClassesList[code]
	}
	return out, nil
}

// Classes returns the categories in code order.
func (le *LabelEncoder) Classes() []string {
	return le.ClassesList
}

// OneHotEncoder expands selected matrix columns into binary indicator
// columns, one per distinct value seen during fitting. Columns not listed in
// Columns pass through unchanged, in their original order, followed by the
// indicator blocks.
type OneHotEncoder struct {
	model.BaseEstimator

	// Columns lists the indices of the columns to encode.
	Columns []int

	// IgnoreUnknown leaves the indicator block all-zero for values unseen
	// at fit time instead of failing.
	IgnoreUnknown bool

	// Categories holds, per encoded column, the distinct values in
	// indicator order.
	Categories map[int][]float64

	nFeatures  int
	nOutput    int
	encodedSet map[int]bool
	catIndex   map[int]map[float64]int
}

// NewOneHotEncoder creates an encoder for the given column indices.
func NewOneHotEncoder(columns ...int) *OneHotEncoder {
	return &OneHotEncoder{Columns: columns}
}

// Fit learns the distinct values of each encoded column.
func (oh *OneHotEncoder) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	oh.encodedSet = make(map[int]bool, len(oh.Columns))
	for _, col := range oh.Columns {
		if col < 0 || col >= c {
			return errors.NewValidationError("columns",
				fmt.Sprintf("column index out of range [0, %d)", c), col)
		}
		oh.encodedSet[col] = true
	}

	oh.nFeatures = c
	oh.Categories = make(map[int][]float64, len(oh.Columns))
	oh.catIndex = make(map[int]map[float64]int, len(oh.Columns))

	oh.nOutput = c - len(oh.Columns)
	for _, col := range oh.Columns {
		seen := make(map[float64]bool)
		for i := 0; i < r; i++ {
			seen[X.At(i, col)] = true
		}
		cats := make([]float64, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Float64s(cats)

		oh.Categories[col] = cats
		index := make(map[float64]int, len(cats))
		for i, v := range cats {
			index[v] = i
		}
		oh.catIndex[col] = index
		oh.nOutput += len(cats)
	}

	oh.SetFitted()
	return nil
}

// Transform produces the expanded matrix: pass-through columns first, then
// one indicator block per encoded column in Columns order.
func (oh *OneHotEncoder) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !oh.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	r, c := X.Dims()
	if c != oh.nFeatures {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", oh.nFeatures, c, 1)
	}

	result := mat.NewDense(r, oh.nOutput, nil)

	for i := 0; i < r; i++ {
		out := 0
		for j := 0; j < c; j++ {
			if !oh.encodedSet[j] {
				result.Set(i, out, X.At(i, j))
				out++
			}
		}
		for _, col := range oh.Columns {
			v := X.At(i, col)
			idx, ok := oh.catIndex[col][v]
			if !ok {
				if !oh.IgnoreUnknown {
					return nil, errors.Wrapf(errors.ErrUnknownCategory,
						"OneHotEncoder.Transform: value %v in column %d", v, col)
				}
				out += len(oh.Categories[col])
				continue
			}
			result.Set(i, out+idx, 1)
			out += len(oh.Categories[col])
		}
	}

	return result, nil
}

// FitTransform fits the encoder and transforms the same data.
func (oh *OneHotEncoder) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := oh.Fit(X); err != nil {
		return nil, err
	}
	return oh.Transform(X)
}

// GetParams returns the encoder's parameters.
func (oh *OneHotEncoder) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"columns":        oh.Columns,
		"ignore_unknown": oh.IgnoreUnknown,
	}
}
