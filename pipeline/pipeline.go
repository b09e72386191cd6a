// Package pipeline chains transformers and a final estimator behind a
// single Fit/Predict surface, in the manner of sklearn.pipeline.Pipeline.
package pipeline

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/model"
	"github.com/hectoramirez/boostpipe/pkg/errors"
	"github.com/hectoramirez/boostpipe/pkg/log"
)

// Step is a single named stage of a pipeline.
type Step struct {
	Name      string
	Estimator interface{} // Transformer for intermediate steps, any estimator last
}

// Pipeline applies its intermediate transformers in order and delegates
// Fit/Predict/Score to the final step. Intermediate steps must implement
// model.Transformer; the final step may be a transformer or an estimator.
type Pipeline struct {
	state  *model.StateManager
	logger log.Logger

	steps   []Step
	verbose bool

	namedSteps map[string]interface{}
}

// New creates a Pipeline from the given steps.
func New(steps ...Step) *Pipeline {
	named := make(map[string]interface{}, len(steps))
	for _, step := range steps {
		named[step.Name] = step.Estimator
	}
	return &Pipeline{
		state:      model.NewStateManager(),
		logger:     log.GetLoggerWithName("Pipeline"),
		steps:      steps,
		namedSteps: named,
	}
}

// Make builds a Pipeline with generated step names, like
// sklearn.pipeline.make_pipeline.
func Make(estimators ...interface{}) *Pipeline {
	steps := make([]Step, len(estimators))
	for i, estimator := range estimators {
		steps[i] = Step{Name: fmt.Sprintf("step%d", i+1), Estimator: estimator}
	}
	return New(steps...)
}

// SetVerbose enables per-step timing logs during Fit.
func (p *Pipeline) SetVerbose(verbose bool) {
	p.verbose = verbose
}

// Fit fits and transforms every intermediate step in order, then fits the
// final estimator on the transformed data.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	if len(p.steps) == 0 {
		return errors.New("pipeline has no steps")
	}

	Xt := X
	var err error
	for i := 0; i < len(p.steps)-1; i++ {
		step := p.steps[i]
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return errors.NewValidationError(
				"pipeline step",
				"intermediate steps must be transformers",
				step.Name,
			)
		}

		start := time.Now()
		if err = transformer.Fit(Xt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to fit step '%s'", step.Name))
		}
		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
		if p.verbose {
			p.logger.Info("fitted step",
				log.StepKey, step.Name,
				log.DurationMsKey, time.Since(start).Milliseconds(),
			)
		}
	}

	final := p.steps[len(p.steps)-1]
	start := time.Now()
	switch est := final.Estimator.(type) {
	case interface {
		Fit(mat.Matrix, mat.Matrix) error
	}:
		if err = est.Fit(Xt, y); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to fit final step '%s'", final.Name))
		}
	case model.Transformer:
		if err = est.Fit(Xt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to fit final step '%s'", final.Name))
		}
	default:
		return errors.NewValidationError(
			"pipeline final step",
			"final step must have a Fit method",
			final.Name,
		)
	}
	if p.verbose {
		p.logger.Info("fitted step",
			log.StepKey, final.Name,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}

	rows, cols := X.Dims()
	p.state.SetDimensions(cols, rows)
	p.state.SetFitted()
	return nil
}

// Predict transforms X through the intermediate steps and predicts with the
// final estimator.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Predict")
	}

	Xt, err := p.transform(X)
	if err != nil {
		return nil, err
	}

	final := p.steps[len(p.steps)-1]
	predictor, ok := final.Estimator.(interface {
		Predict(mat.Matrix) (mat.Matrix, error)
	})
	if !ok {
		return nil, errors.NewValidationError(
			"pipeline final step",
			"final step must have a Predict method",
			final.Name,
		)
	}
	return predictor.Predict(Xt)
}

// PredictProba transforms X and returns class probabilities from the final
// estimator.
func (p *Pipeline) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "PredictProba")
	}

	Xt, err := p.transform(X)
	if err != nil {
		return nil, err
	}

	final := p.steps[len(p.steps)-1]
	predictor, ok := final.Estimator.(interface {
		PredictProba(mat.Matrix) (mat.Matrix, error)
	})
	if !ok {
		return nil, errors.NewValidationError(
			"pipeline final step",
			"final step must have a PredictProba method",
			final.Name,
		)
	}
	return predictor.PredictProba(Xt)
}

// Transform applies every step's Transform in order. All steps, the final
// one included, must be transformers.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Transform")
	}

	Xt := X
	var err error
	for _, step := range p.steps {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"all steps must be transformers for Transform",
				step.Name,
			)
		}
		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}
	return Xt, nil
}

// FitTransform fits every step as a transformer and returns the fully
// transformed data.
func (p *Pipeline) FitTransform(X, y mat.Matrix) (mat.Matrix, error) {
	if len(p.steps) == 0 {
		return nil, errors.New("pipeline has no steps")
	}

	Xt := X
	var err error
	for _, step := range p.steps {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"all steps must be transformers for FitTransform",
				step.Name,
			)
		}
		if err = transformer.Fit(Xt); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to fit step '%s'", step.Name))
		}
		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}

	p.state.SetFitted()
	return Xt, nil
}

// FitPredict fits the pipeline and predicts on the same data.
func (p *Pipeline) FitPredict(X, y mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X, y); err != nil {
		return nil, err
	}
	return p.Predict(X)
}

// Score transforms X and returns the final estimator's score against y.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	if !p.state.IsFitted() {
		return 0, errors.NewNotFittedError("Pipeline", "Score")
	}

	Xt, err := p.transform(X)
	if err != nil {
		return 0, err
	}

	final := p.steps[len(p.steps)-1]
	scorer, ok := final.Estimator.(interface {
		Score(mat.Matrix, mat.Matrix) (float64, error)
	})
	if !ok {
		return 0, errors.NewValidationError(
			"pipeline final step",
			"final step must have a Score method",
			final.Name,
		)
	}
	return scorer.Score(Xt, y)
}

// InverseTransform applies each step's InverseTransform in reverse order.
func (p *Pipeline) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "InverseTransform")
	}

	Xt := X
	var err error
	for i := len(p.steps) - 1; i >= 0; i-- {
		step := p.steps[i]
		inverter, ok := step.Estimator.(interface {
			InverseTransform(mat.Matrix) (mat.Matrix, error)
		})
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"all steps must have an InverseTransform method",
				step.Name,
			)
		}
		Xt, err = inverter.InverseTransform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to inverse transform at step '%s'", step.Name))
		}
	}
	return Xt, nil
}

// GetParams returns the pipeline's parameters, with each step's own
// parameters flattened under "<step>__<param>" keys.
func (p *Pipeline) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"steps":   p.steps,
		"verbose": p.verbose,
	}
	for _, step := range p.steps {
		getter, ok := step.Estimator.(model.ParameterGetter)
		if !ok {
			continue
		}
		for key, value := range getter.GetParams() {
			params[fmt.Sprintf("%s__%s", step.Name, key)] = value
		}
	}
	return params
}

// SetParams updates pipeline parameters. Step parameters use the
// "<step>__<param>" convention and are routed to the named step.
func (p *Pipeline) SetParams(params map[string]interface{}) error {
	stepParams := make(map[string]map[string]interface{})
	for key, value := range params {
		switch key {
		case "verbose":
			verbose, ok := value.(bool)
			if !ok {
				return errors.NewValidationError("verbose", "must be a bool", value)
			}
			p.verbose = verbose
		default:
			name, param, ok := splitParamKey(key)
			if !ok {
				return errors.NewValidationError(key, "unknown pipeline parameter", value)
			}
			if _, exists := p.namedSteps[name]; !exists {
				return errors.NewValidationError(key, "no step with this name", name)
			}
			if stepParams[name] == nil {
				stepParams[name] = make(map[string]interface{})
			}
			stepParams[name][param] = value
		}
	}

	for name, sp := range stepParams {
		setter, ok := p.namedSteps[name].(model.ParameterSetter)
		if !ok {
			return errors.NewValidationError(name, "step does not support SetParams", name)
		}
		if err := setter.SetParams(sp); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to set params on step '%s'", name))
		}
	}
	return nil
}

// NamedSteps returns the steps keyed by name.
func (p *Pipeline) NamedSteps() map[string]interface{} {
	return p.namedSteps
}

// Steps returns a copy of the step list.
func (p *Pipeline) Steps() []Step {
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// transform runs X through every step except the last.
func (p *Pipeline) transform(X mat.Matrix) (mat.Matrix, error) {
	Xt := X
	var err error
	for i := 0; i < len(p.steps)-1; i++ {
		step := p.steps[i]
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"intermediate steps must be transformers",
				step.Name,
			)
		}
		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}
	return Xt, nil
}

func splitParamKey(key string) (step, param string, ok bool) {
	for i := 0; i+1 < len(key); i++ {
		if key[i] == '_' && key[i+1] == '_' {
			return key[:i], key[i+2:], true
		}
	}
	return "", "", false
}
