package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/model"
	"github.com/hectoramirez/boostpipe/dataset"
	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// DictVectorizer turns field-name→value records into a numeric design
// matrix, compatible with scikit-learn's DictVectorizer. Numeric fields map
// to one feature named after the field; string fields one-hot expand into
// one feature per "field=value" pair. Feature columns are sorted by name so
// fitting is deterministic.
//
// It pairs with dataset.Records, which normalizes a Table or a bare matrix
// into the record form this vectorizer consumes.
type DictVectorizer struct {
	model.BaseEstimator

	// Vocabulary maps feature name to column index.
	Vocabulary map[string]int

	featureNames []string
}

// NewDictVectorizer creates a new DictVectorizer.
func NewDictVectorizer() *DictVectorizer {
	return &DictVectorizer{}
}

// Fit learns the feature vocabulary from the records.
func (dv *DictVectorizer) Fit(records []dataset.Record) error {
	if len(records) == 0 {
		return errors.NewModelError("DictVectorizer.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		for field, value := range rec {
			name, err := featureName(field, value)
			if err != nil {
				return err
			}
			seen[name] = true
		}
	}

	dv.featureNames = make([]string, 0, len(seen))
	for name := range seen {
		dv.featureNames = append(dv.featureNames, name)
	}
	sort.Strings(dv.featureNames)

	dv.Vocabulary = make(map[string]int, len(dv.featureNames))
	for i, name := range dv.featureNames {
		dv.Vocabulary[name] = i
	}

	dv.SetFitted()
	return nil
}

// Transform produces the design matrix. Fields or categories unseen at fit
// time are silently dropped, matching scikit-learn; missing fields leave
// zeros behind.
func (dv *DictVectorizer) Transform(records []dataset.Record) (*mat.Dense, error) {
	if !dv.IsFitted() {
		return nil, errors.NewNotFittedError("DictVectorizer", "Transform")
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("DictVectorizer.Transform", "empty data", errors.ErrEmptyData)
	}

	result := mat.NewDense(len(records), len(dv.featureNames), nil)
	for i, rec := range records {
		for field, value := range rec {
			name, err := featureName(field, value)
			if err != nil {
				return nil, err
			}
			col, ok := dv.Vocabulary[name]
			if !ok {
				continue
			}
			switch v := value.(type) {
			case float64:
				result.Set(i, col, v)
			case string:
				result.Set(i, col, 1)
			}
		}
	}

	return result, nil
}

// FitTransform fits the vectorizer and transforms the same records.
func (dv *DictVectorizer) FitTransform(records []dataset.Record) (*mat.Dense, error) {
	if err := dv.Fit(records); err != nil {
		return nil, err
	}
	return dv.Transform(records)
}

// FeatureNames returns the feature names in column order.
func (dv *DictVectorizer) FeatureNames() []string {
	names := make([]string, len(dv.featureNames))
	copy(names, dv.featureNames)
	return names
}

func featureName(field string, value interface{}) (string, error) {
	switch v := value.(type) {
	case float64:
		return field, nil
	case string:
		return field + "=" + v, nil
	default:
		return "", errors.NewValidationError(field, "record values must be float64 or string", value)
	}
}
