package dataset

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRecordsFromTable(t *testing.T) {
	table, err := New(
		Column{Name: "area", Kind: Numeric, Floats: []float64{120, 95}},
		Column{Name: "neighborhood", Kind: Categorical, Strings: []string{"east", ""}},
	)
	if err != nil {
		t.Fatal(err)
	}

	records := table.Records()
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	want0 := Record{"area": 120.0, "neighborhood": "east"}
	if !reflect.DeepEqual(records[0], want0) {
		t.Errorf("records[0] = %v, want %v", records[0], want0)
	}

	// missing cell is omitted from the record
	if _, ok := records[1]["neighborhood"]; ok {
		t.Errorf("missing cell should be absent from record: %v", records[1])
	}
	if records[1]["area"] != 95.0 {
		t.Errorf("records[1][area] = %v, want 95", records[1]["area"])
	}
}

func TestRecordsFromMatrix(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	records, err := Records(m)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	want := Record{"x0": 4.0, "x1": 5.0, "x2": 6.0}
	if !reflect.DeepEqual(records[1], want) {
		t.Errorf("records[1] = %v, want %v", records[1], want)
	}
}

func TestRecordsEquivalence(t *testing.T) {
	// A numeric table and the equivalent matrix with x0/x1 names must
	// produce identical records.
	table, err := New(
		Column{Name: "x0", Kind: Numeric, Floats: []float64{1, 3}},
		Column{Name: "x1", Kind: Numeric, Floats: []float64{2, 4}},
	)
	if err != nil {
		t.Fatal(err)
	}
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	fromTable, err := Records(table)
	if err != nil {
		t.Fatal(err)
	}
	fromMatrix, err := Records(m)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromTable, fromMatrix) {
		t.Errorf("table records %v != matrix records %v", fromTable, fromMatrix)
	}
}

func TestRecordsRejectsUnknownType(t *testing.T) {
	if _, err := Records(42); err == nil {
		t.Error("unsupported input type should fail")
	}
}
