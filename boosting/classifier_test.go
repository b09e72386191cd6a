package boosting

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// separableFixture returns a one-feature binary dataset split at x = 0.
func separableFixture() (*mat.Dense, *mat.Dense) {
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i-10) / 2
		X.Set(i, 0, x)
		if x > 0 {
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func TestGBClassifierFitPredict(t *testing.T) {
	X, y := separableFixture()

	clf := NewGBClassifier().
		WithNEstimators(30).
		WithLearningRate(0.5).
		WithMaxDepth(2)

	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	rows, _ := y.Dims()
	for i := 0; i < rows; i++ {
		if pred.At(i, 0) != y.At(i, 0) {
			t.Errorf("label[%d] = %v, want %v", i, pred.At(i, 0), y.At(i, 0))
		}
	}

	score, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("accuracy on separable fixture = %v, want 1", score)
	}
}

func TestGBClassifierPredictProba(t *testing.T) {
	X, y := separableFixture()

	clf := NewGBClassifier().WithNEstimators(30).WithMaxDepth(2)
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	proba, err := clf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}

	rows, cols := proba.Dims()
	if cols != 2 {
		t.Fatalf("proba columns = %d, want 2", cols)
	}
	for i := 0; i < rows; i++ {
		p0, p1 := proba.At(i, 0), proba.At(i, 1)
		if p0 < 0 || p0 > 1 || p1 < 0 || p1 > 1 {
			t.Errorf("row %d probabilities (%v, %v) outside [0, 1]", i, p0, p1)
		}
		if math.Abs(p0+p1-1) > 1e-12 {
			t.Errorf("row %d probabilities sum to %v, want 1", i, p0+p1)
		}
	}

	// Positive-class probability must track the label side.
	if proba.At(0, 1) >= 0.5 {
		t.Error("negative sample should have positive-class probability below 0.5")
	}
	if proba.At(rows-1, 1) <= 0.5 {
		t.Error("positive sample should have positive-class probability above 0.5")
	}
}

func TestGBClassifierClasses(t *testing.T) {
	clf := NewGBClassifier()
	classes := clf.Classes()
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		t.Errorf("Classes() = %v, want [0 1]", classes)
	}
}

func TestGBClassifierLabelValidation(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{0, 1, 2})

	clf := NewGBClassifier().WithNEstimators(2)
	if err := clf.Fit(X, y); err == nil {
		t.Error("Fit with non-binary labels should fail")
	}
}

func TestGBClassifierNotFitted(t *testing.T) {
	clf := NewGBClassifier()
	X := mat.NewDense(1, 1, []float64{1})

	if _, err := clf.Predict(X); err == nil {
		t.Error("Predict before Fit should fail")
	}
	if _, err := clf.PredictProba(X); err == nil {
		t.Error("PredictProba before Fit should fail")
	}
}
