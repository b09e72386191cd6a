package boosting

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/model"
	"github.com/hectoramirez/boostpipe/metrics"
	"github.com/hectoramirez/boostpipe/pkg/errors"
	"github.com/hectoramirez/boostpipe/pkg/log"
)

// GBClassifier is a gradient-boosted-tree binary classifier with a
// scikit-learn style API. Labels must be 0 or 1.
type GBClassifier struct {
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
	Gamma           float64
	RandomState     int64
	Verbosity       int

	nFeatures int
	nSamples  int
}

// NewGBClassifier creates a classifier with the default hyperparameters.
func NewGBClassifier() *GBClassifier {
	return &GBClassifier{
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
func (gb *GBClassifier) WithNEstimators(n int) *GBClassifier {
	gb.NEstimators = n
	return gb
}

// WithLearningRate sets the shrinkage applied to each tree.
func (gb *GBClassifier) WithLearningRate(lr float64) *GBClassifier {
	gb.LearningRate = lr
	return gb
}

// WithMaxDepth sets the maximum tree depth.
func (gb *GBClassifier) WithMaxDepth(d int) *GBClassifier {
	gb.MaxDepth = d
	return gb
}

// WithRandomState sets the sampling seed.
func (gb *GBClassifier) WithRandomState(seed int64) *GBClassifier {
	gb.RandomState = seed
	return gb
}

func (gb *GBClassifier) trainingParams() TrainingParams {
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
		Objective:       ObjectiveLogistic,
		Seed:            gb.RandomState,
		Verbosity:       gb.Verbosity,
	}
}

// Fit trains the ensemble on X and binary labels y.
func (gb *GBClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GBClassifier.Fit")

	rows, cols := X.Dims()
	yRows, _ := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("Fit", rows, yRows, 0)
	}
	for i := 0; i < yRows; i++ {
		if label := y.At(i, 0); label != 0 && label != 1 {
			return errors.NewValueError("Fit", "labels must be 0 or 1")
		}
	}

	gb.nFeatures = cols
	gb.nSamples = rows

	if gb.Verbosity > 0 {
		log.GetLoggerWithName("boosting.classifier").Info("training GBClassifier",
			log.SamplesKey, rows,
			log.FeaturesKey, cols,
		)
	}

	trainer := NewTrainer(gb.trainingParams())
	if err := trainer.Fit(X, y); err != nil {
		return errors.Wrap(err, "training failed")
	}

	gb.Model = trainer.Model()
	gb.SetFitted()
	return nil
}

// Predict returns hard 0/1 labels, thresholding the positive-class
// probability at 0.5.
func (gb *GBClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := gb.PredictProba(X)
	if err != nil {
		return nil, err
	}

	rows, _ := proba.Dims()
	labels := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		if proba.At(i, 1) >= 0.5 {
			labels.Set(i, 0, 1)
		}
	}
	return labels, nil
}

// PredictProba returns class probabilities, one column per class in the
// order Classes() reports them.
func (gb *GBClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("GBClassifier", "PredictProba")
	}
	_, cols := X.Dims()
	if cols != gb.nFeatures {
		return nil, errors.NewDimensionError("PredictProba", gb.nFeatures, cols, 1)
	}

	scores, err := gb.Model.Predict(X)
	if err != nil {
		return nil, err
	}

	rows, _ := scores.Dims()
	proba := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		p := scores.At(i, 0)
		proba.Set(i, 0, 1-p)
		proba.Set(i, 1, p)
	}
	return proba, nil
}

// Classes returns the class labels in probability-column order.
func (gb *GBClassifier) Classes() []int {
	return []int{0, 1}
}

// Score returns the mean accuracy on X against y.
func (gb *GBClassifier) Score(X, y mat.Matrix) (float64, error) {
	if !gb.IsFitted() {
		return 0, errors.NewNotFittedError("GBClassifier", "Score")
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
	return metrics.Accuracy(yVec, predVec)
}

// FeatureImportance returns per-feature importance, "split" or "gain".
func (gb *GBClassifier) FeatureImportance(importanceType string) ([]float64, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("GBClassifier", "FeatureImportance")
	}
	return gb.Model.FeatureImportance(importanceType)
}

// GetParams returns the hyperparameters under their sklearn names.
func (gb *GBClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":     gb.NEstimators,
		"learning_rate":    gb.LearningRate,
		"max_depth":        gb.MaxDepth,
		"min_samples_leaf": gb.MinSamplesLeaf,
		"min_child_weight": gb.MinChildWeight,
		"subsample":        gb.Subsample,
		"colsample_bytree": gb.ColsampleByTree,
		"reg_alpha":        gb.RegAlpha,
		"reg_lambda":       gb.RegLambda,
		"gamma":            gb.Gamma,
		"random_state":     gb.RandomState,
		"verbosity":        gb.Verbosity,
	}
}

// SetParams updates hyperparameters by their sklearn names.
func (gb *GBClassifier) SetParams(params map[string]interface{}) error {
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
