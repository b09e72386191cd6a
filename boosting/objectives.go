package boosting

import (
	"math"

	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// Objective names accepted by the trainer and the estimator wrappers.
const (
	ObjectiveSquaredError = "squared_error"
	ObjectiveLogistic     = "logistic"
)

// ObjectiveFunction supplies per-sample first and second derivatives of the
// training loss, evaluated at the raw (untransformed) ensemble margin.
type ObjectiveFunction interface {
	Gradient(prediction, target float64) float64
	Hessian(prediction, target float64) float64
	Loss(prediction, target float64) float64

	// InitScore is the constant baseline margin for the given targets.
	InitScore(targets []float64) float64

	Name() string
}

// SquaredErrorObjective is the L2 regression loss.
type SquaredErrorObjective struct{}

func NewSquaredErrorObjective() *SquaredErrorObjective {
	return &SquaredErrorObjective{}
}

func (o *SquaredErrorObjective) Gradient(prediction, target float64) float64 {
	return prediction - target
}

func (o *SquaredErrorObjective) Hessian(prediction, target float64) float64 {
	return 1.0
}

func (o *SquaredErrorObjective) Loss(prediction, target float64) float64 {
	diff := prediction - target
	return 0.5 * diff * diff
}

func (o *SquaredErrorObjective) InitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range targets {
		sum += t
	}
	return sum / float64(len(targets))
}

func (o *SquaredErrorObjective) Name() string {
	return ObjectiveSquaredError
}

// LogisticObjective is the binary cross-entropy loss on 0/1 targets. The
// margin is a log-odds score; predictions pass through a sigmoid.
type LogisticObjective struct{}

func NewLogisticObjective() *LogisticObjective {
	return &LogisticObjective{}
}

func (o *LogisticObjective) Gradient(prediction, target float64) float64 {
	return sigmoid(prediction) - target
}

func (o *LogisticObjective) Hessian(prediction, target float64) float64 {
	p := sigmoid(prediction)
	h := p * (1 - p)
	if h < 1e-16 {
		h = 1e-16
	}
	return h
}

func (o *LogisticObjective) Loss(prediction, target float64) float64 {
	p := sigmoid(prediction)
	eps := 1e-15
	if p < eps {
		p = eps
	} else if p > 1-eps {
		p = 1 - eps
	}
	return -(target*math.Log(p) + (1-target)*math.Log(1-p))
}

func (o *LogisticObjective) InitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	pos := 0.0
	for _, t := range targets {
		pos += t
	}
	p := pos / float64(len(targets))
	eps := 1e-15
	if p < eps {
		p = eps
	} else if p > 1-eps {
		p = 1 - eps
	}
	// log-odds of the base rate
	return math.Log(p / (1 - p))
}

func (o *LogisticObjective) Name() string {
	return ObjectiveLogistic
}

// NewObjective returns the objective function registered under name.
func NewObjective(name string) (ObjectiveFunction, error) {
	switch name {
	case ObjectiveSquaredError, "regression", "l2", "mse":
		return NewSquaredErrorObjective(), nil
	case ObjectiveLogistic, "binary":
		return NewLogisticObjective(), nil
	default:
		return nil, errors.NewValueError("NewObjective", "unknown objective: "+name)
	}
}
