package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// Accuracy computes the fraction of correct predictions. Labels must be
// 0 or 1; predictions are rounded at 0.5.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		pred := 0.0
		if yPred.AtVec(i) >= 0.5 {
			pred = 1.0
		}
		if pred == yTrue.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AUC computes the area under the ROC curve for binary labels and
// predicted scores. Tied scores contribute half a concordant pair, the
// trapezoidal convention. When only one class is present the metric is
// undefined: 0.5 is returned and an UndefinedMetricWarning is emitted.
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return 0, errors.NewValueError("AUC", "labels must be 0 or 1")
		}
	}

	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("auc", "only one class present", 0.5))
		return 0.5, nil
	}

	// Rank-sum formulation: AUC = (R_pos - nPos(nPos+1)/2) / (nPos*nNeg)
	// with average ranks for tied scores.
	type scored struct {
		score float64
		label float64
	}
	items := make([]scored, n)
	for i := 0; i < n; i++ {
		items[i] = scored{score: yPred.AtVec(i), label: yTrue.AtVec(i)}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].score < items[j].score })

	rankSum := 0.0
	i := 0
	for i < n {
		j := i
		for j < n && items[j].score == items[i].score {
			j++
		}
		// ranks are 1-based; tied block shares the average rank
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if items[k].label == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}

	auc := (rankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg))
	return auc, nil
}

// LogLoss computes the binary cross-entropy of predicted probabilities.
// Probabilities are clipped to [eps, 1-eps] to keep the logarithm finite.
func LogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("LogLoss", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("LogLoss", n, yPred.Len(), 0)
	}

	const eps = 1e-15
	var sum float64
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		if y != 0 && y != 1 {
			return 0, errors.NewValueError("LogLoss", "labels must be 0 or 1")
		}
		p := yPred.AtVec(i)
		if p < eps {
			p = eps
		}
		if p > 1-eps {
			p = 1 - eps
		}
		sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}

	return sum / float64(n), nil
}
