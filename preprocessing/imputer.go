// Package preprocessing provides the transformers that prepare tabular data
// for model fitting: missing-value imputation, categorical encoding, record
// vectorization and feature scaling.
package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/model"
	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// ImputeStrategy selects how SimpleImputer fills missing values.
type ImputeStrategy string

const (
	// ImputeMean fills with the column mean.
	ImputeMean ImputeStrategy = "mean"
	// ImputeMedian fills with the column median.
	ImputeMedian ImputeStrategy = "median"
	// ImputeMostFrequent fills with the column mode.
	ImputeMostFrequent ImputeStrategy = "most_frequent"
	// ImputeConstant fills with a fixed value.
	ImputeConstant ImputeStrategy = "constant"
)

// SimpleImputer fills NaN cells with a per-column statistic learned at fit
// time, compatible with scikit-learn's SimpleImputer.
type SimpleImputer struct {
	model.BaseEstimator

	// Strategy selects the fill statistic.
	Strategy ImputeStrategy

	// FillValue is the constant used by ImputeConstant.
	FillValue float64

	// Statistics holds the learned per-column fill values.
	Statistics []float64

	// NFeatures is the number of features seen during fit.
	NFeatures int
}

// NewSimpleImputer creates an imputer with the given strategy.
func NewSimpleImputer(strategy ImputeStrategy) *SimpleImputer {
	return &SimpleImputer{Strategy: strategy}
}

// NewConstantImputer creates an imputer that fills with a fixed value.
func NewConstantImputer(fillValue float64) *SimpleImputer {
	return &SimpleImputer{Strategy: ImputeConstant, FillValue: fillValue}
}

// Fit learns the per-column fill statistics from the non-missing cells.
func (im *SimpleImputer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SimpleImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	switch im.Strategy {
	case ImputeMean, ImputeMedian, ImputeMostFrequent, ImputeConstant:
	default:
		return errors.NewValidationError("strategy", "unknown imputation strategy", string(im.Strategy))
	}

	im.NFeatures = c
	im.Statistics = make([]float64, c)

	for j := 0; j < c; j++ {
		values := make([]float64, 0, r)
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}

		if im.Strategy == ImputeConstant {
			im.Statistics[j] = im.FillValue
			continue
		}

		if len(values) == 0 {
			// Entirely missing column: fall back to zero and warn.
			errors.Warn(errors.NewDataConversionWarning(
				fmt.Sprintf("column %d", j), "zero",
				"all values missing, imputing 0"))
			im.Statistics[j] = 0
			continue
		}

		switch im.Strategy {
		case ImputeMean:
			sum := 0.0
			for _, v := range values {
				sum += v
			}
			im.Statistics[j] = sum / float64(len(values))
		case ImputeMedian:
			im.Statistics[j] = median(values)
		case ImputeMostFrequent:
			im.Statistics[j] = mode(values)
		}
	}

	im.SetFitted()
	return nil
}

// Transform replaces NaN cells with the fitted statistics.
func (im *SimpleImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !im.IsFitted() {
		return nil, errors.NewNotFittedError("SimpleImputer", "Transform")
	}

	r, c := X.Dims()
	if c != im.NFeatures {
		return nil, errors.NewDimensionError("SimpleImputer.Transform", im.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = im.Statistics[j]
			}
			result.Set(i, j, v)
		}
	}

	return result, nil
}

// FitTransform fits the imputer and transforms the same data.
func (im *SimpleImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := im.Fit(X); err != nil {
		return nil, err
	}
	return im.Transform(X)
}

// GetParams returns the imputer's parameters.
func (im *SimpleImputer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"strategy":   string(im.Strategy),
		"fill_value": im.FillValue,
	}
}

// String returns a printable representation.
func (im *SimpleImputer) String() string {
	if !im.IsFitted() {
		return fmt.Sprintf("SimpleImputer(strategy=%s)", im.Strategy)
	}
	return fmt.Sprintf("SimpleImputer(strategy=%s, n_features=%d)", im.Strategy, im.NFeatures)
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mode(values []float64) float64 {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := values[0]
	bestCount := 0
	for v, count := range counts {
		// Ties break toward the smaller value for determinism
		if count > bestCount || (count == bestCount && v < best) {
			best = v
			bestCount = count
		}
	}
	return best
}
