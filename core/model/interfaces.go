package model

import "gonum.org/v1/gonum/mat"

// Fitter is implemented by estimators that learn from labeled data.
type Fitter interface {
	// Fit trains the estimator on X with targets y.
	Fit(X, y mat.Matrix) error
}

// Predictor is implemented by estimators that can predict.
type Predictor interface {
	// Predict returns predictions for X as an n×1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is implemented by estimators that compute a goodness-of-fit score:
// R² for regressors, accuracy for classifiers.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Transformer is implemented by data transformation steps.
type Transformer interface {
	// Fit learns the parameters required for the transformation.
	Fit(X mat.Matrix) error

	// Transform applies the transformation.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits and transforms in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Regressor combines the interfaces of a regression estimator.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// Classifier combines the interfaces of a classification estimator.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns per-class probability estimates, one column
	// per class in the order reported by Classes.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the distinct class labels seen during fitting.
	Classes() []int
}

// ParameterGetter exposes an estimator's hyperparameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter allows hyperparameter modification, used by search.
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}
