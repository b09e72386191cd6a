package boosting

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/model"
	"github.com/hectoramirez/boostpipe/pkg/errors"
	"github.com/hectoramirez/boostpipe/pkg/log"
)

// Distribution samples one hyperparameter value.
type Distribution interface {
	Sample(r *rand.Rand) interface{}
}

// Uniform samples float64 values uniformly from [Low, High).
type Uniform struct {
	Low, High float64
}

func (d Uniform) Sample(r *rand.Rand) interface{} {
	return d.Low + r.Float64()*(d.High-d.Low)
}

// LogUniform samples float64 values whose logarithm is uniform on
// [log(Low), log(High)). Both bounds must be positive.
type LogUniform struct {
	Low, High float64
}

func (d LogUniform) Sample(r *rand.Rand) interface{} {
	lo, hi := math.Log(d.Low), math.Log(d.High)
	return math.Exp(lo + r.Float64()*(hi-lo))
}

// IntUniform samples integers uniformly from [Low, High] inclusive.
type IntUniform struct {
	Low, High int
}

func (d IntUniform) Sample(r *rand.Rand) interface{} {
	return d.Low + r.IntN(d.High-d.Low+1)
}

// Choice samples uniformly from a fixed option set.
type Choice struct {
	Options []interface{}
}

func (d Choice) Sample(r *rand.Rand) interface{} {
	return d.Options[r.IntN(len(d.Options))]
}

// SearchResult is one evaluated parameter candidate.
type SearchResult struct {
	Params    map[string]interface{}
	MeanScore float64
	StdScore  float64
}

// searchEstimator is what the search needs to construct candidates: a
// fresh Estimator that also accepts parameter assignments.
type searchEstimator interface {
	Estimator
	model.ParameterSetter
}

// RandomizedSearchCV samples NIter parameter candidates from the given
// distributions, cross-validates each and keeps the best, like
// sklearn.model_selection.RandomizedSearchCV.
type RandomizedSearchCV struct {
	Factory            func() Estimator
	ParamDistributions map[string]Distribution
	NIter              int
	CV                 Splitter
	Scoring            string
	Seed               int64

	// Fitted results
	Results       []SearchResult
	BestParams    map[string]interface{}
	BestScore     float64
	BestEstimator Estimator

	logger log.Logger
	fitted bool
}

// NewRandomizedSearchCV creates a search over the given distributions.
func NewRandomizedSearchCV(factory func() Estimator, distributions map[string]Distribution, nIter int, cv Splitter, scoring string, seed int64) *RandomizedSearchCV {
	if nIter <= 0 {
		nIter = 10
	}
	return &RandomizedSearchCV{
		Factory:            factory,
		ParamDistributions: distributions,
		NIter:              nIter,
		CV:                 cv,
		Scoring:            scoring,
		Seed:               seed,
		logger:             log.GetLoggerWithName("boosting.search"),
	}
}

// sampleParams draws one candidate, with keys visited in sorted order so a
// fixed seed yields the same candidate sequence.
func (rs *RandomizedSearchCV) sampleParams(r *rand.Rand) map[string]interface{} {
	keys := make([]string, 0, len(rs.ParamDistributions))
	for key := range rs.ParamDistributions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	params := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		params[key] = rs.ParamDistributions[key].Sample(r)
	}
	return params
}

// Fit evaluates NIter sampled candidates with cross-validation, then
// refits the best candidate on the full data.
func (rs *RandomizedSearchCV) Fit(X, y mat.Matrix) error {
	if rs.Factory == nil {
		return errors.NewValidationError("Factory", "estimator factory is required", nil)
	}
	if rs.CV == nil {
		return errors.NewValidationError("CV", "a fold splitter is required", nil)
	}
	if len(rs.ParamDistributions) == 0 {
		return errors.NewValidationError("ParamDistributions", "at least one distribution is required", nil)
	}

	sc, err := newScorer(rs.Scoring)
	if err != nil {
		return err
	}

	if _, ok := rs.Factory().(searchEstimator); !ok {
		return errors.NewValidationError("Factory", "estimator does not support SetParams", nil)
	}

	r := rand.New(rand.NewPCG(uint64(rs.Seed), uint64(rs.Seed)+1))

	rs.Results = make([]SearchResult, 0, rs.NIter)
	bestIdx := -1
	for iter := 0; iter < rs.NIter; iter++ {
		params := rs.sampleParams(r)

		candidate := func() Estimator {
			est := rs.Factory()
			setter, ok := est.(searchEstimator)
			if !ok {
				return est
			}
			// Sampling already happened; a bad assignment surfaces in Fit.
			_ = setter.SetParams(params)
			return est
		}

		cvResult, err := CrossValidate(candidate, X, y, rs.CV, rs.Scoring)
		if err != nil {
			return errors.Wrap(err, "candidate evaluation failed")
		}

		result := SearchResult{
			Params:    params,
			MeanScore: cvResult.MeanScore(),
			StdScore:  cvResult.StdScore(),
		}
		rs.Results = append(rs.Results, result)

		rs.logger.Debug("evaluated candidate",
			log.IterationKey, iter,
			log.MetricKey, rs.Scoring,
			log.ScoreKey, result.MeanScore,
		)

		if bestIdx < 0 || better(result.MeanScore, rs.Results[bestIdx].MeanScore, sc.greaterIsBetter) {
			bestIdx = iter
		}
	}

	rs.BestParams = rs.Results[bestIdx].Params
	rs.BestScore = rs.Results[bestIdx].MeanScore

	best := rs.Factory()
	if setter, ok := best.(searchEstimator); ok {
		if err := setter.SetParams(rs.BestParams); err != nil {
			return errors.Wrap(err, "refit with best params failed")
		}
	}
	if err := best.Fit(X, y); err != nil {
		return errors.Wrap(err, "refit with best params failed")
	}
	rs.BestEstimator = best
	rs.fitted = true

	rs.logger.Info("search finished",
		log.MetricKey, rs.Scoring,
		log.ScoreKey, rs.BestScore,
	)
	return nil
}

// Predict delegates to the refitted best estimator.
func (rs *RandomizedSearchCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rs.fitted {
		return nil, errors.NewNotFittedError("RandomizedSearchCV", "Predict")
	}
	return rs.BestEstimator.Predict(X)
}

func better(candidate, incumbent float64, greaterIsBetter bool) bool {
	if greaterIsBetter {
		return candidate > incumbent
	}
	return candidate < incumbent
}
