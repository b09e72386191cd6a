package dataset

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func makeSplitFixture(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i)*2)
		y.Set(i, 0, float64(i))
	}
	return X, y
}

func TestTrainTestSplitSizes(t *testing.T) {
	X, y := makeSplitFixture(10)

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.3, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit failed: %v", err)
	}

	trainRows, _ := XTrain.Dims()
	testRows, _ := XTest.Dims()
	if trainRows != 7 || testRows != 3 {
		t.Errorf("split sizes = %d/%d, want 7/3", trainRows, testRows)
	}
	yTrainRows, _ := yTrain.Dims()
	yTestRows, _ := yTest.Dims()
	if yTrainRows != 7 || yTestRows != 3 {
		t.Errorf("target sizes = %d/%d, want 7/3", yTrainRows, yTestRows)
	}
}

func TestTrainTestSplitPartition(t *testing.T) {
	X, y := makeSplitFixture(20)

	_, _, yTrain, yTest, err := TrainTestSplit(X, y, 0.25, 7)
	if err != nil {
		t.Fatal(err)
	}

	// Every original row appears exactly once across the two partitions.
	seen := make(map[float64]int)
	tr, _ := yTrain.Dims()
	for i := 0; i < tr; i++ {
		seen[yTrain.At(i, 0)]++
	}
	te, _ := yTest.Dims()
	for i := 0; i < te; i++ {
		seen[yTest.At(i, 0)]++
	}
	if len(seen) != 20 {
		t.Errorf("expected 20 distinct rows, got %d", len(seen))
	}
	for v, count := range seen {
		if count != 1 {
			t.Errorf("row %v appears %d times", v, count)
		}
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := makeSplitFixture(15)

	_, _, _, yTest1, err := TrainTestSplit(X, y, 0.2, 99)
	if err != nil {
		t.Fatal(err)
	}
	_, _, _, yTest2, err := TrainTestSplit(X, y, 0.2, 99)
	if err != nil {
		t.Fatal(err)
	}

	if !mat.Equal(yTest1, yTest2) {
		t.Error("same seed should produce the same split")
	}
}

func TestTrainTestSplitValidation(t *testing.T) {
	X, y := makeSplitFixture(10)

	if _, _, _, _, err := TrainTestSplit(X, y, 0, 1); err == nil {
		t.Error("testSize 0 should fail")
	}
	if _, _, _, _, err := TrainTestSplit(X, y, 1.5, 1); err == nil {
		t.Error("testSize > 1 should fail")
	}

	badY := mat.NewDense(5, 1, nil)
	if _, _, _, _, err := TrainTestSplit(X, badY, 0.3, 1); err == nil {
		t.Error("row mismatch should fail")
	}
}
