package boosting

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// stepFixture returns a one-feature dataset whose target jumps at x = 0.
func stepFixture() (*mat.Dense, *mat.Dense) {
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i-10) / 2
		X.Set(i, 0, x)
		if x > 0 {
			y.Set(i, 0, 5)
		} else {
			y.Set(i, 0, -5)
		}
	}
	return X, y
}

func TestTrainerFitsStepFunction(t *testing.T) {
	X, y := stepFixture()

	trainer := NewTrainer(TrainingParams{
		NumRounds:    50,
		LearningRate: 0.3,
		MaxDepth:     3,
	})
	if err := trainer.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	model := trainer.Model()
	pred, err := model.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	rows, _ := y.Dims()
	for i := 0; i < rows; i++ {
		if diff := math.Abs(pred.At(i, 0) - y.At(i, 0)); diff > 0.01 {
			t.Errorf("prediction[%d] = %v, want %v", i, pred.At(i, 0), y.At(i, 0))
		}
	}
}

func TestTrainerLossDecreases(t *testing.T) {
	X, y := stepFixture()

	lossAfter := func(rounds int) float64 {
		trainer := NewTrainer(TrainingParams{
			NumRounds:    rounds,
			LearningRate: 0.1,
			MaxDepth:     2,
		})
		if err := trainer.Fit(X, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		return trainer.currentLoss()
	}

	short := lossAfter(2)
	long := lossAfter(30)
	if long >= short {
		t.Errorf("training loss did not decrease: %v rounds -> %v, 30 rounds -> %v", 2, short, long)
	}
}

func TestTrainerMissingValues(t *testing.T) {
	// Missing x behaves like the high group, so the learned default
	// direction must route NaN with the positive leaf.
	X := mat.NewDense(8, 1, []float64{-3, -2, -1, 1, 2, 3, math.NaN(), math.NaN()})
	y := mat.NewDense(8, 1, []float64{-1, -1, -1, 1, 1, 1, 1, 1})

	trainer := NewTrainer(TrainingParams{
		NumRounds:    30,
		LearningRate: 0.3,
		MaxDepth:     2,
	})
	if err := trainer.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	model := trainer.Model()
	pred, err := model.Predict(mat.NewDense(1, 1, []float64{math.NaN()}))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if got := pred.At(0, 0); math.Abs(got-1) > 0.05 {
		t.Errorf("prediction for missing value = %v, want close to 1", got)
	}
}

func TestTrainerValidation(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})

	tests := []struct {
		name string
		y    *mat.Dense
	}{
		{name: "row mismatch", y: mat.NewDense(2, 1, []float64{1, 2})},
		{name: "multi column target", y: mat.NewDense(3, 2, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trainer := NewTrainer(TrainingParams{NumRounds: 1})
			if err := trainer.Fit(X, tt.y); err == nil {
				t.Error("Fit should fail")
			}
		})
	}

	trainer := NewTrainer(TrainingParams{NumRounds: 1, Objective: "poisson"})
	if err := trainer.Fit(X, mat.NewDense(3, 1, []float64{1, 2, 3})); err == nil {
		t.Error("unknown objective should fail")
	}
}

func TestTrainerSubsamplingDeterminism(t *testing.T) {
	X, y := stepFixture()

	train := func() *Model {
		trainer := NewTrainer(TrainingParams{
			NumRounds:    10,
			LearningRate: 0.3,
			MaxDepth:     3,
			Subsample:    0.8,
			Seed:         7,
		})
		if err := trainer.Fit(X, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		return trainer.Model()
	}

	first := train()
	second := train()

	predFirst, err := first.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	predSecond, err := second.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if !mat.Equal(predFirst, predSecond) {
		t.Error("identically seeded training runs produced different models")
	}
}

func TestTrainerRegularization(t *testing.T) {
	X, y := stepFixture()

	leafMagnitude := func(lambda float64) float64 {
		trainer := NewTrainer(TrainingParams{
			NumRounds:    1,
			LearningRate: 1.0,
			MaxDepth:     1,
			Lambda:       lambda,
		})
		if err := trainer.Fit(X, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		model := trainer.Model()
		maxAbs := 0.0
		for _, node := range model.Trees[0].Nodes {
			if node.IsLeaf() && math.Abs(node.LeafValue) > maxAbs {
				maxAbs = math.Abs(node.LeafValue)
			}
		}
		return maxAbs
	}

	if leafMagnitude(10) >= leafMagnitude(0) {
		t.Error("L2 regularization should shrink leaf values")
	}
}
