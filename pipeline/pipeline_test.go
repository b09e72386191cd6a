package pipeline

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/preprocessing"
)

// meanRegressor predicts the mean of the training targets. It is the
// smallest possible final estimator for exercising the pipeline.
type meanRegressor struct {
	mean   float64
	fitted bool
}

func (m *meanRegressor) Fit(X, y mat.Matrix) error {
	rows, _ := y.Dims()
	sum := 0.0
	for i := 0; i < rows; i++ {
		sum += y.At(i, 0)
	}
	m.mean = sum / float64(rows)
	m.fitted = true
	return nil
}

func (m *meanRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, _ := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, m.mean)
	}
	return out, nil
}

func (m *meanRegressor) Score(X, y mat.Matrix) (float64, error) {
	return 1.0, nil
}

func (m *meanRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{"mean": m.mean}
}

func TestPipelineFitPredict(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, math.NaN(),
		2, 4,
		3, 6,
		4, 8,
	})
	y := mat.NewDense(4, 1, []float64{10, 20, 30, 40})

	reg := &meanRegressor{}
	p := New(
		Step{Name: "imputer", Estimator: preprocessing.NewSimpleImputer(preprocessing.ImputeMean)},
		Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()},
		Step{Name: "model", Estimator: reg},
	)

	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !reg.fitted {
		t.Error("final estimator was not fitted")
	}

	pred, err := p.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	rows, cols := pred.Dims()
	if rows != 4 || cols != 1 {
		t.Fatalf("prediction shape = (%d, %d), want (4, 1)", rows, cols)
	}
	for i := 0; i < rows; i++ {
		if pred.At(i, 0) != 25 {
			t.Errorf("prediction[%d] = %v, want 25", i, pred.At(i, 0))
		}
	}
}

func TestPipelineNotFitted(t *testing.T) {
	p := New(Step{Name: "model", Estimator: &meanRegressor{}})
	X := mat.NewDense(1, 1, []float64{1})

	if _, err := p.Predict(X); err == nil {
		t.Error("Predict before Fit should fail")
	}
	if _, err := p.Transform(X); err == nil {
		t.Error("Transform before Fit should fail")
	}
	if _, err := p.Score(X, X); err == nil {
		t.Error("Score before Fit should fail")
	}
}

func TestPipelineInvalidIntermediateStep(t *testing.T) {
	p := New(
		Step{Name: "not-a-transformer", Estimator: &meanRegressor{}},
		Step{Name: "model", Estimator: &meanRegressor{}},
	)
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(2, 1, []float64{1, 2})

	if err := p.Fit(X, y); err == nil {
		t.Error("Fit should reject non-transformer intermediate step")
	}
}

func TestPipelineEmpty(t *testing.T) {
	p := New()
	X := mat.NewDense(1, 1, []float64{1})
	if err := p.Fit(X, X); err == nil {
		t.Error("empty pipeline should fail to fit")
	}
}

func TestPipelineFitTransform(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})

	p := New(
		Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()},
	)
	Xt, err := p.FitTransform(X, nil)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	mean := (Xt.At(0, 0) + Xt.At(1, 0) + Xt.At(2, 0)) / 3
	if math.Abs(mean) > 1e-10 {
		t.Errorf("scaled column mean = %v, want 0", mean)
	}

	// Transform on the fitted pipeline must agree with FitTransform output.
	Xt2, err := p.Transform(X)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if !mat.EqualApprox(Xt, Xt2, 1e-12) {
		t.Error("Transform after FitTransform disagrees with FitTransform output")
	}
}

func TestPipelineInverseTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
	})

	p := New(
		Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()},
	)
	Xt, err := p.FitTransform(X, nil)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	restored, err := p.InverseTransform(Xt)
	if err != nil {
		t.Fatalf("InverseTransform failed: %v", err)
	}
	if !mat.EqualApprox(X, restored, 1e-10) {
		t.Error("inverse transform did not recover original data")
	}
}

func TestMakeGeneratesNames(t *testing.T) {
	p := Make(preprocessing.NewStandardScalerDefault(), &meanRegressor{})

	steps := p.Steps()
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}
	if steps[0].Name != "step1" || steps[1].Name != "step2" {
		t.Errorf("generated names = %q, %q; want step1, step2", steps[0].Name, steps[1].Name)
	}
	if _, ok := p.NamedSteps()["step2"].(*meanRegressor); !ok {
		t.Error("NamedSteps lookup by generated name failed")
	}
}

func TestPipelineParams(t *testing.T) {
	reg := &meanRegressor{mean: 7}
	p := New(Step{Name: "model", Estimator: reg})

	params := p.GetParams()
	if got, ok := params["model__mean"]; !ok || got != 7.0 {
		t.Errorf("params[model__mean] = %v, want 7", got)
	}

	if err := p.SetParams(map[string]interface{}{"verbose": true}); err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}
	if got := p.GetParams()["verbose"]; got != true {
		t.Error("verbose was not updated")
	}

	if err := p.SetParams(map[string]interface{}{"nosuch__p": 1}); err == nil {
		t.Error("SetParams should reject unknown step names")
	}
}

func TestPipelineScore(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(2, 1, []float64{1, 2})

	p := New(Step{Name: "model", Estimator: &meanRegressor{}})
	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	score, err := p.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("score = %v, want 1", score)
	}
}
