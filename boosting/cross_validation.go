package boosting

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/metrics"
	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// Estimator is the minimal surface cross-validation and search need from a
// model. GBRegressor, GBClassifier and Pipeline all satisfy it.
type Estimator interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// probaEstimator is satisfied by classifiers; probability-based scorers
// use column 1 of PredictProba instead of hard labels.
type probaEstimator interface {
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// CVFold is one train/test index split.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// Splitter generates cross-validation folds.
type Splitter interface {
	Split(X, y mat.Matrix) []CVFold
	NSplits() int
}

// KFold splits samples into k consecutive folds, optionally shuffled.
type KFold struct {
	K       int
	Shuffle bool
	Seed    int64
}

// NewKFold creates a k-fold splitter. k below 2 falls back to 5.
func NewKFold(k int, shuffle bool, seed int64) *KFold {
	if k < 2 {
		k = 5
	}
	return &KFold{K: k, Shuffle: shuffle, Seed: seed}
}

func (kf *KFold) NSplits() int {
	return kf.K
}

// Split generates the train/test indices for each fold. The test sets
// partition the full index range.
func (kf *KFold) Split(X, _ mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.Seed), uint64(kf.Seed)+1))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.K)
	foldSize := nSamples / kf.K
	remainder := nSamples % kf.K

	offset := 0
	for i := 0; i < kf.K; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		test := make([]int, testSize)
		copy(test, indices[offset:offset+testSize])

		train := make([]int, 0, nSamples-testSize)
		train = append(train, indices[:offset]...)
		train = append(train, indices[offset+testSize:]...)

		folds[i] = CVFold{TrainIndices: train, TestIndices: test}
		offset += testSize
	}
	return folds
}

// StratifiedKFold splits samples so each fold preserves the class
// proportions of y.
type StratifiedKFold struct {
	K       int
	Shuffle bool
	Seed    int64
}

// NewStratifiedKFold creates a stratified splitter. k below 2 falls back
// to 5.
func NewStratifiedKFold(k int, shuffle bool, seed int64) *StratifiedKFold {
	if k < 2 {
		k = 5
	}
	return &StratifiedKFold{K: k, Shuffle: shuffle, Seed: seed}
}

func (skf *StratifiedKFold) NSplits() int {
	return skf.K
}

// Split distributes each class round-robin style across the folds, then
// builds train sets as the complement of each test set.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	classIndices := make(map[float64][]int)
	var labels []float64
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		if _, seen := classIndices[label]; !seen {
			labels = append(labels, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}
	sort.Float64s(labels)

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(skf.Seed), uint64(skf.Seed)+1))
		for _, label := range labels {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]CVFold, skf.K)
	for _, label := range labels {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.K
		remainder := nClass % skf.K

		offset := 0
		for i := 0; i < skf.K; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			folds[i].TestIndices = append(folds[i].TestIndices, indices[offset:offset+testSize]...)
			offset += testSize
		}
	}

	for i := range folds {
		inTest := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			inTest[idx] = true
		}
		for j := 0; j < nSamples; j++ {
			if !inTest[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}
	return folds
}

// CVResult holds per-fold scores from a cross-validation run.
type CVResult struct {
	TrainScores []float64
	TestScores  []float64
}

// MeanScore returns the mean test score across folds.
func (cv *CVResult) MeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range cv.TestScores {
		sum += s
	}
	return sum / float64(len(cv.TestScores))
}

// StdScore returns the sample standard deviation of test scores.
func (cv *CVResult) StdScore() float64 {
	if len(cv.TestScores) <= 1 {
		return 0
	}
	mean := cv.MeanScore()
	sumSq := 0.0
	for _, s := range cv.TestScores {
		diff := s - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(cv.TestScores)-1))
}

// scorer evaluates predictions against targets. GreaterIsBetter determines
// the comparison direction used by the search.
type scorer struct {
	name            string
	greaterIsBetter bool
	usesProba       bool
	score           func(yTrue, yPred *mat.VecDense) (float64, error)
}

func newScorer(name string) (*scorer, error) {
	switch name {
	case "rmse":
		return &scorer{name: name, score: metrics.RMSE}, nil
	case "mse", "neg_mean_squared_error":
		return &scorer{name: name, score: metrics.MSE}, nil
	case "mae":
		return &scorer{name: name, score: metrics.MAE}, nil
	case "r2":
		return &scorer{name: name, greaterIsBetter: true, score: metrics.R2Score}, nil
	case "accuracy":
		return &scorer{name: name, greaterIsBetter: true, score: metrics.Accuracy}, nil
	case "auc", "roc_auc":
		return &scorer{name: name, greaterIsBetter: true, usesProba: true, score: metrics.AUC}, nil
	case "log_loss":
		return &scorer{name: name, usesProba: true, score: metrics.LogLoss}, nil
	default:
		return nil, errors.NewValueError("newScorer", "unknown scoring: "+name)
	}
}

// evaluate scores an already-fitted estimator on X, y.
func (s *scorer) evaluate(est Estimator, X, y mat.Matrix) (float64, error) {
	var pred mat.Matrix
	var err error

	if s.usesProba {
		proba, ok := est.(probaEstimator)
		if !ok {
			return 0, errors.NewValidationError("scoring", "estimator has no PredictProba for probability scoring", s.name)
		}
		raw, err := proba.PredictProba(X)
		if err != nil {
			return 0, err
		}
		rows, _ := raw.Dims()
		positive := mat.NewDense(rows, 1, nil)
		for i := 0; i < rows; i++ {
			positive.Set(i, 0, raw.At(i, 1))
		}
		pred = positive
	} else {
		pred, err = est.Predict(X)
		if err != nil {
			return 0, err
		}
	}

	yVec, err := metrics.ColumnVec(y)
	if err != nil {
		return 0, err
	}
	predVec, err := metrics.ColumnVec(pred)
	if err != nil {
		return 0, err
	}
	return s.score(yVec, predVec)
}

// CrossValidate fits a fresh estimator per fold and scores it on the held
// out data. Folds run concurrently.
func CrossValidate(factory func() Estimator, X, y mat.Matrix, splitter Splitter, scoring string) (*CVResult, error) {
	sc, err := newScorer(scoring)
	if err != nil {
		return nil, err
	}

	folds := splitter.Split(X, y)
	result := &CVResult{
		TrainScores: make([]float64, len(folds)),
		TestScores:  make([]float64, len(folds)),
	}
	foldErrs := make([]error, len(folds))

	var wg sync.WaitGroup
	for foldIdx := range folds {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			fold := folds[idx]

			trainX, trainY := subsetRows(X, y, fold.TrainIndices)
			testX, testY := subsetRows(X, y, fold.TestIndices)

			est := factory()
			if err := est.Fit(trainX, trainY); err != nil {
				foldErrs[idx] = errors.Wrap(err, fmt.Sprintf("fold %d training failed", idx))
				return
			}

			trainScore, err := sc.evaluate(est, trainX, trainY)
			if err != nil {
				foldErrs[idx] = errors.Wrap(err, fmt.Sprintf("fold %d train scoring failed", idx))
				return
			}
			testScore, err := sc.evaluate(est, testX, testY)
			if err != nil {
				foldErrs[idx] = errors.Wrap(err, fmt.Sprintf("fold %d test scoring failed", idx))
				return
			}

			result.TrainScores[idx] = trainScore
			result.TestScores[idx] = testScore
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range foldErrs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// subsetRows copies the selected rows of X and y into fresh matrices.
func subsetRows(X, y mat.Matrix, indices []int) (mat.Matrix, mat.Matrix) {
	_, xCols := X.Dims()
	_, yCols := y.Dims()

	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	xSub := mat.NewDense(len(sorted), xCols, nil)
	ySub := mat.NewDense(len(sorted), yCols, nil)
	for i, idx := range sorted {
		for j := 0; j < xCols; j++ {
			xSub.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySub.Set(i, j, y.At(idx, j))
		}
	}
	return xSub, ySub
}
