package dataset

import (
	"math"
	"strings"
	"testing"
)

const housingCSV = `price,area,rooms,neighborhood
245000,120,3,east
312000,150,4,north
,95,2,east
189000,80,2,
450000,210,5,south
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(housingCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if table.NumRows() != 5 {
		t.Errorf("NumRows = %d, want 5", table.NumRows())
	}
	if table.NumCols() != 4 {
		t.Errorf("NumCols = %d, want 4", table.NumCols())
	}

	price, err := table.Column("price")
	if err != nil {
		t.Fatal(err)
	}
	if price.Kind != Numeric {
		t.Errorf("price should be numeric")
	}
	if !math.IsNaN(price.Floats[2]) {
		t.Errorf("missing price should be NaN, got %v", price.Floats[2])
	}
	if price.Floats[0] != 245000 {
		t.Errorf("price[0] = %v, want 245000", price.Floats[0])
	}

	hood, err := table.Column("neighborhood")
	if err != nil {
		t.Fatal(err)
	}
	if hood.Kind != Categorical {
		t.Errorf("neighborhood should be categorical")
	}
	if hood.Strings[3] != "" {
		t.Errorf("missing neighborhood should be empty, got %q", hood.Strings[3])
	}
	if !hood.IsMissing(3) {
		t.Errorf("IsMissing(3) should be true")
	}
}

func TestReadCSVCustomNA(t *testing.T) {
	csv := "a,b\n1,x\n?,y\n"
	table, err := ReadCSV(strings.NewReader(csv), WithNAValues("?"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	a, err := table.Column("a")
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsMissing(1) {
		t.Errorf("'?' should be treated as missing")
	}
}

func TestSelectDrop(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(housingCSV))
	if err != nil {
		t.Fatal(err)
	}

	sel, err := table.Select("area", "rooms")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if sel.NumCols() != 2 {
		t.Errorf("Select NumCols = %d, want 2", sel.NumCols())
	}

	rest, err := table.Drop("price")
	if err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if rest.NumCols() != 3 {
		t.Errorf("Drop NumCols = %d, want 3", rest.NumCols())
	}
	if _, err := rest.Column("price"); err == nil {
		t.Errorf("dropped column should be gone")
	}

	if _, err := table.Select("nope"); err == nil {
		t.Errorf("selecting an unknown column should fail")
	}
}

func TestPop(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(housingCSV))
	if err != nil {
		t.Fatal(err)
	}

	features, y, err := table.Pop("price")
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if features.NumCols() != 3 {
		t.Errorf("features NumCols = %d, want 3", features.NumCols())
	}
	rows, cols := y.Dims()
	if rows != 5 || cols != 1 {
		t.Errorf("y dims = %dx%d, want 5x1", rows, cols)
	}
	if y.At(1, 0) != 312000 {
		t.Errorf("y[1] = %v, want 312000", y.At(1, 0))
	}

	if _, _, err := table.Pop("neighborhood"); err == nil {
		t.Errorf("popping a categorical target should fail")
	}
}

func TestMatrix(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(housingCSV))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := table.Matrix(); err == nil {
		t.Errorf("table with categorical columns should not convert")
	}

	numeric, err := table.Select("area", "rooms")
	if err != nil {
		t.Fatal(err)
	}
	m, err := numeric.Matrix()
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	rows, cols := m.Dims()
	if rows != 5 || cols != 2 {
		t.Errorf("dims = %dx%d, want 5x2", rows, cols)
	}
	if m.At(4, 0) != 210 {
		t.Errorf("m[4,0] = %v, want 210", m.At(4, 0))
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(
		Column{Name: "a", Kind: Numeric, Floats: []float64{1, 2}},
		Column{Name: "a", Kind: Numeric, Floats: []float64{3, 4}},
	)
	if err == nil {
		t.Error("duplicate names should fail")
	}

	_, err = New(
		Column{Name: "a", Kind: Numeric, Floats: []float64{1, 2}},
		Column{Name: "b", Kind: Numeric, Floats: []float64{3}},
	)
	if err == nil {
		t.Error("ragged columns should fail")
	}
}
