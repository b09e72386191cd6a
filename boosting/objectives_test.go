package boosting

import (
	"math"
	"testing"
)

func TestSquaredErrorObjective(t *testing.T) {
	obj := NewSquaredErrorObjective()

	tests := []struct {
		name       string
		pred, tgt  float64
		wantGrad   float64
		wantHess   float64
		wantLoss   float64
	}{
		{name: "exact", pred: 2, tgt: 2, wantGrad: 0, wantHess: 1, wantLoss: 0},
		{name: "over", pred: 3, tgt: 2, wantGrad: 1, wantHess: 1, wantLoss: 0.5},
		{name: "under", pred: 0, tgt: 2, wantGrad: -2, wantHess: 1, wantLoss: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := obj.Gradient(tt.pred, tt.tgt); got != tt.wantGrad {
				t.Errorf("Gradient = %v, want %v", got, tt.wantGrad)
			}
			if got := obj.Hessian(tt.pred, tt.tgt); got != tt.wantHess {
				t.Errorf("Hessian = %v, want %v", got, tt.wantHess)
			}
			if got := obj.Loss(tt.pred, tt.tgt); got != tt.wantLoss {
				t.Errorf("Loss = %v, want %v", got, tt.wantLoss)
			}
		})
	}

	if got := obj.InitScore([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("InitScore = %v, want 2.5 (target mean)", got)
	}
	if got := obj.InitScore(nil); got != 0 {
		t.Errorf("InitScore of empty targets = %v, want 0", got)
	}
}

func TestLogisticObjective(t *testing.T) {
	obj := NewLogisticObjective()

	// At margin 0 the predicted probability is 0.5.
	if got := obj.Gradient(0, 1); math.Abs(got-(-0.5)) > 1e-12 {
		t.Errorf("Gradient(0, 1) = %v, want -0.5", got)
	}
	if got := obj.Gradient(0, 0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Gradient(0, 0) = %v, want 0.5", got)
	}
	if got := obj.Hessian(0, 1); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("Hessian(0, 1) = %v, want 0.25", got)
	}
	if got := obj.Loss(0, 1); math.Abs(got-math.Log(2)) > 1e-12 {
		t.Errorf("Loss(0, 1) = %v, want ln(2)", got)
	}

	// Hessian stays strictly positive at extreme margins.
	if got := obj.Hessian(100, 1); got <= 0 {
		t.Errorf("Hessian at extreme margin = %v, want > 0", got)
	}

	// Balanced targets give zero log-odds.
	if got := obj.InitScore([]float64{0, 1, 0, 1}); math.Abs(got) > 1e-12 {
		t.Errorf("InitScore of balanced targets = %v, want 0", got)
	}
	// 3:1 positives give log(3).
	if got := obj.InitScore([]float64{1, 1, 1, 0}); math.Abs(got-math.Log(3)) > 1e-9 {
		t.Errorf("InitScore = %v, want ln(3)", got)
	}
}

func TestNewObjective(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "squared_error", want: ObjectiveSquaredError},
		{name: "regression", want: ObjectiveSquaredError},
		{name: "mse", want: ObjectiveSquaredError},
		{name: "logistic", want: ObjectiveLogistic},
		{name: "binary", want: ObjectiveLogistic},
		{name: "poisson", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tt := range tests {
		obj, err := NewObjective(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewObjective(%q) should fail", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewObjective(%q) failed: %v", tt.name, err)
			continue
		}
		if obj.Name() != tt.want {
			t.Errorf("NewObjective(%q).Name() = %q, want %q", tt.name, obj.Name(), tt.want)
		}
	}
}
