package preprocessing

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/dataset"
)

func TestDictVectorizer(t *testing.T) {
	records := []dataset.Record{
		{"area": 120.0, "neighborhood": "east"},
		{"area": 95.0, "neighborhood": "north"},
		{"area": 80.0},
	}

	dv := NewDictVectorizer()
	X, err := dv.FitTransform(records)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	wantNames := []string{"area", "neighborhood=east", "neighborhood=north"}
	if !reflect.DeepEqual(dv.FeatureNames(), wantNames) {
		t.Fatalf("FeatureNames = %v, want %v", dv.FeatureNames(), wantNames)
	}

	want := mat.NewDense(3, 3, []float64{
		120, 1, 0,
		95, 0, 1,
		80, 0, 0,
	})
	if !mat.EqualApprox(X, want, 1e-12) {
		t.Errorf("design matrix:\n%v\nwant:\n%v", mat.Formatted(X), mat.Formatted(want))
	}
}

func TestDictVectorizerUnseenDropped(t *testing.T) {
	dv := NewDictVectorizer()
	if err := dv.Fit([]dataset.Record{{"color": "red"}}); err != nil {
		t.Fatal(err)
	}

	X, err := dv.Transform([]dataset.Record{{"color": "blue", "extra": 3.0}})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	rows, cols := X.Dims()
	if rows != 1 || cols != 1 {
		t.Fatalf("dims = %dx%d, want 1x1", rows, cols)
	}
	if X.At(0, 0) != 0 {
		t.Errorf("unseen category should leave a zero row, got %v", X.At(0, 0))
	}
}

func TestDictVectorizerMatrixInput(t *testing.T) {
	// The adapter and the vectorizer together reproduce the original matrix.
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	records, err := dataset.Records(m)
	if err != nil {
		t.Fatal(err)
	}

	dv := NewDictVectorizer()
	X, err := dv.FitTransform(records)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(X, m, 1e-12) {
		t.Errorf("vectorized matrix differs from input:\n%v", mat.Formatted(X))
	}
}

func TestDictVectorizerErrors(t *testing.T) {
	dv := NewDictVectorizer()
	if err := dv.Fit(nil); err == nil {
		t.Error("empty fit should fail")
	}
	if _, err := dv.Transform([]dataset.Record{{"a": 1.0}}); err == nil {
		t.Error("transform before fit should fail")
	}

	bad := []dataset.Record{{"a": []int{1}}}
	if err := NewDictVectorizer().Fit(bad); err == nil {
		t.Error("non-scalar record value should fail")
	}
}
