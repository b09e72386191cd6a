package boosting

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/model"
	"github.com/hectoramirez/boostpipe/metrics"
	"github.com/hectoramirez/boostpipe/pkg/errors"
	"github.com/hectoramirez/boostpipe/pkg/log"
)

// GBRegressor is a gradient-boosted-tree regressor with a scikit-learn
// style API.
type GBRegressor struct {
	model.BaseEstimator

	Model *Model

	// Hyperparameters
	NEstimators     int
	LearningRate    float64
	MaxDepth        int
	MinSamplesLeaf  int
	MinChildWeight  float64
	Subsample       float64
	ColsampleByTree float64
	RegAlpha        float64
	RegLambda       float64
	Gamma           float64 // minimum gain required to split
	RandomState     int64
	Verbosity       int

	nFeatures int
	nSamples  int
}

// NewGBRegressor creates a regressor with the default hyperparameters.
func NewGBRegressor() *GBRegressor {
	return &GBRegressor{
		NEstimators:     100,
		LearningRate:    0.1,
		MaxDepth:        6,
		MinSamplesLeaf:  1,
		MinChildWeight:  1e-3,
		Subsample:       1.0,
		ColsampleByTree: 1.0,
		RegAlpha:        0.0,
		RegLambda:       1.0,
		Gamma:           0.0,
		RandomState:     42,
		Verbosity:       0,
	}
}

// WithNEstimators sets the number of boosting rounds.
func (gb *GBRegressor) WithNEstimators(n int) *GBRegressor {
	gb.NEstimators = n
	return gb
}

// WithLearningRate sets the shrinkage applied to each tree.
func (gb *GBRegressor) WithLearningRate(lr float64) *GBRegressor {
	gb.LearningRate = lr
	return gb
}

// WithMaxDepth sets the maximum tree depth.
func (gb *GBRegressor) WithMaxDepth(d int) *GBRegressor {
	gb.MaxDepth = d
	return gb
}

// WithRandomState sets the sampling seed.
func (gb *GBRegressor) WithRandomState(seed int64) *GBRegressor {
	gb.RandomState = seed
	return gb
}

func (gb *GBRegressor) trainingParams(objective string) TrainingParams {
	return TrainingParams{
		NumRounds:       gb.NEstimators,
		LearningRate:    gb.LearningRate,
		MaxDepth:        gb.MaxDepth,
		Lambda:          gb.RegLambda,
		Alpha:           gb.RegAlpha,
		MinGainToSplit:  gb.Gamma,
		MinSamplesLeaf:  gb.MinSamplesLeaf,
		MinChildWeight:  gb.MinChildWeight,
		Subsample:       gb.Subsample,
		ColsampleByTree: gb.ColsampleByTree,
		Objective:       objective,
		Seed:            gb.RandomState,
		Verbosity:       gb.Verbosity,
	}
}

// Fit trains the ensemble on X and the single-column target y.
func (gb *GBRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GBRegressor.Fit")

	rows, cols := X.Dims()
	yRows, _ := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("Fit", rows, yRows, 0)
	}

	gb.nFeatures = cols
	gb.nSamples = rows

	if gb.Verbosity > 0 {
		log.GetLoggerWithName("boosting.regressor").Info("training GBRegressor",
			log.SamplesKey, rows,
			log.FeaturesKey, cols,
		)
	}

	trainer := NewTrainer(gb.trainingParams(ObjectiveSquaredError))
	if err := trainer.Fit(X, y); err != nil {
		return errors.Wrap(err, "training failed")
	}

	gb.Model = trainer.Model()
	gb.SetFitted()
	return nil
}

// Predict returns the ensemble predictions as a single-column matrix.
func (gb *GBRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("GBRegressor", "Predict")
	}
	_, cols := X.Dims()
	if cols != gb.nFeatures {
		return nil, errors.NewDimensionError("Predict", gb.nFeatures, cols, 1)
	}
	return gb.Model.Predict(X)
}

// Score returns the coefficient of determination R².
func (gb *GBRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !gb.IsFitted() {
		return 0, errors.NewNotFittedError("GBRegressor", "Score")
	}
	pred, err := gb.Predict(X)
	if err != nil {
		return 0, err
	}
	yVec, err := metrics.ColumnVec(y)
	if err != nil {
		return 0, err
	}
	predVec, err := metrics.ColumnVec(pred)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yVec, predVec)
}

// FeatureImportance returns per-feature importance, "split" or "gain".
func (gb *GBRegressor) FeatureImportance(importanceType string) ([]float64, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("GBRegressor", "FeatureImportance")
	}
	return gb.Model.FeatureImportance(importanceType)
}

// GetParams returns the hyperparameters under their sklearn names.
func (gb *GBRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      gb.NEstimators,
		"learning_rate":     gb.LearningRate,
		"max_depth":         gb.MaxDepth,
		"min_samples_leaf":  gb.MinSamplesLeaf,
		"min_child_weight":  gb.MinChildWeight,
		"subsample":         gb.Subsample,
		"colsample_bytree":  gb.ColsampleByTree,
		"reg_alpha":         gb.RegAlpha,
		"reg_lambda":        gb.RegLambda,
		"gamma":             gb.Gamma,
		"random_state":      gb.RandomState,
		"verbosity":         gb.Verbosity,
	}
}

// SetParams updates hyperparameters by their sklearn names. Unknown keys
// are rejected.
func (gb *GBRegressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		if err := setBoosterParam(key, value, &boosterFields{
			nEstimators:     &gb.NEstimators,
			learningRate:    &gb.LearningRate,
			maxDepth:        &gb.MaxDepth,
			minSamplesLeaf:  &gb.MinSamplesLeaf,
			minChildWeight:  &gb.MinChildWeight,
			subsample:       &gb.Subsample,
			colsampleByTree: &gb.ColsampleByTree,
			regAlpha:        &gb.RegAlpha,
			regLambda:       &gb.RegLambda,
			gamma:           &gb.Gamma,
			randomState:     &gb.RandomState,
			verbosity:       &gb.Verbosity,
		}); err != nil {
			return err
		}
	}
	return nil
}

// boosterFields collects the hyperparameter storage shared by the
// regressor and the classifier so SetParams has one implementation.
type boosterFields struct {
	nEstimators     *int
	learningRate    *float64
	maxDepth        *int
	minSamplesLeaf  *int
	minChildWeight  *float64
	subsample       *float64
	colsampleByTree *float64
	regAlpha        *float64
	regLambda       *float64
	gamma           *float64
	randomState     *int64
	verbosity       *int
}

func setBoosterParam(key string, value interface{}, fields *boosterFields) error {
	switch key {
	case "n_estimators":
		return setIntParam(key, value, fields.nEstimators)
	case "learning_rate":
		return setFloatParam(key, value, fields.learningRate)
	case "max_depth":
		return setIntParam(key, value, fields.maxDepth)
	case "min_samples_leaf":
		return setIntParam(key, value, fields.minSamplesLeaf)
	case "min_child_weight":
		return setFloatParam(key, value, fields.minChildWeight)
	case "subsample":
		return setFloatParam(key, value, fields.subsample)
	case "colsample_bytree":
		return setFloatParam(key, value, fields.colsampleByTree)
	case "reg_alpha":
		return setFloatParam(key, value, fields.regAlpha)
	case "reg_lambda":
		return setFloatParam(key, value, fields.regLambda)
	case "gamma":
		return setFloatParam(key, value, fields.gamma)
	case "random_state":
		switch v := value.(type) {
		case int64:
			*fields.randomState = v
		case int:
			*fields.randomState = int64(v)
		default:
			return errors.NewValidationError(key, "must be an integer", value)
		}
		return nil
	case "verbosity":
		return setIntParam(key, value, fields.verbosity)
	default:
		return errors.NewValidationError(key, "unknown parameter", value)
	}
}

func setIntParam(key string, value interface{}, dst *int) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case float64:
		*dst = int(v)
	default:
		return errors.NewValidationError(key, "must be an integer", value)
	}
	return nil
}

func setFloatParam(key string, value interface{}, dst *float64) error {
	switch v := value.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	default:
		return errors.NewValidationError(key, "must be a number", value)
	}
	return nil
}
