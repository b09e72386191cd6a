// Package dataset provides the tabular data types that feed the
// preprocessing pipeline: a column-oriented Table with named columns and
// missing cells, CSV ingestion through gota, a record adapter for the
// vectorizer, and train/test splitting.
package dataset

import (
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// ColumnKind distinguishes numeric from categorical columns.
type ColumnKind int

const (
	// Numeric columns hold float64 values, NaN marking missing cells.
	Numeric ColumnKind = iota
	// Categorical columns hold string values, "" marking missing cells.
	Categorical
)

// Column is a single named column of a Table.
type Column struct {
	Name    string
	Kind    ColumnKind
	Floats  []float64 // set when Kind == Numeric
	Strings []string  // set when Kind == Categorical
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// IsMissing reports whether the cell at row i is missing.
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Strings[i] == ""
}

// Table is a column-oriented tabular dataset with a fixed column set.
type Table struct {
	cols  []Column
	index map[string]int
	nRows int
}

// New creates a Table from columns. All columns must have the same length
// and distinct names.
func New(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", c.Name)
		}
		if i == 0 {
			t.nRows = c.Len()
		} else if c.Len() != t.nRows {
			return nil, errors.NewDimensionError("dataset.New", t.nRows, c.Len(), 0)
		}
		t.index[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewValidationError("column", "no such column", name)
	}
	return &t.cols[i], nil
}

// Select returns a new Table containing only the named columns.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, *c)
	}
	return New(cols...)
}

// Drop returns a new Table without the named columns.
func (t *Table) Drop(names ...string) (*Table, error) {
	dropped := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := t.index[name]; !ok {
			return nil, errors.NewValidationError("column", "no such column", name)
		}
		dropped[name] = true
	}
	cols := make([]Column, 0, len(t.cols))
	for _, c := range t.cols {
		if !dropped[c.Name] {
			cols = append(cols, c)
		}
	}
	return New(cols...)
}

// Pop removes the named numeric column and returns it as an n×1 matrix
// alongside the remaining Table. It is the usual way to separate the target
// from the features.
func (t *Table) Pop(name string) (*Table, *mat.Dense, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, nil, err
	}
	if c.Kind != Numeric {
		return nil, nil, errors.NewValidationError("column", "target column must be numeric", name)
	}
	rest, err := t.Drop(name)
	if err != nil {
		return nil, nil, err
	}
	y := mat.NewDense(t.nRows, 1, nil)
	for i, v := range c.Floats {
		y.Set(i, 0, v)
	}
	return rest, y, nil
}

// Matrix converts an all-numeric Table into a dense matrix. Categorical
// columns must be encoded first.
func (t *Table) Matrix() (*mat.Dense, error) {
	if len(t.cols) == 0 || t.nRows == 0 {
		return nil, errors.NewModelError("Table.Matrix", "empty table", errors.ErrEmptyData)
	}
	for _, c := range t.cols {
		if c.Kind != Numeric {
			return nil, errors.NewValidationError("column", "categorical column cannot be converted to a matrix; encode it first", c.Name)
		}
	}
	m := mat.NewDense(t.nRows, len(t.cols), nil)
	for j, c := range t.cols {
		for i, v := range c.Floats {
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// CSVOption configures ReadCSV.
type CSVOption func(*csvConfig)

type csvConfig struct {
	naValues  []string
	hasHeader bool
}

// WithNAValues sets the strings treated as missing cells.
func WithNAValues(values ...string) CSVOption {
	return func(c *csvConfig) { c.naValues = values }
}

// WithoutHeader marks the file as headerless; columns are named X0, X1, ...
func WithoutHeader() CSVOption {
	return func(c *csvConfig) { c.hasHeader = false }
}

// ReadCSV loads a Table from CSV data. Column types are detected by gota:
// int and float columns become Numeric, everything else Categorical.
// The default missing markers are "", "NA", "NaN" and "?".
func ReadCSV(r io.Reader, opts ...CSVOption) (*Table, error) {
	cfg := csvConfig{
		naValues:  []string{"", "NA", "NaN", "?"},
		hasHeader: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(cfg.hasHeader),
		dataframe.NaNValues(cfg.naValues),
		dataframe.DetectTypes(true),
	)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "failed to parse CSV")
	}
	return FromDataFrame(df)
}

// ReadCSVFile loads a Table from a CSV file on disk.
func ReadCSVFile(path string, opts ...CSVOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f, opts...)
}

// FromDataFrame converts a gota DataFrame into a Table.
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, errors.WithStack(df.Err)
	}

	nRows := df.Nrow()
	cols := make([]Column, 0, df.Ncol())
	for _, name := range df.Names() {
		s := df.Col(name)
		switch s.Type() {
		case series.Int, series.Float:
			floats := make([]float64, nRows)
			for i := 0; i < nRows; i++ {
				e := s.Elem(i)
				if e.IsNA() {
					floats[i] = math.NaN()
				} else {
					floats[i] = e.Float()
				}
			}
			cols = append(cols, Column{Name: name, Kind: Numeric, Floats: floats})
		default:
			strs := make([]string, nRows)
			for i := 0; i < nRows; i++ {
				e := s.Elem(i)
				if e.IsNA() {
					strs[i] = ""
				} else {
					strs[i] = e.String()
				}
			}
			cols = append(cols, Column{Name: name, Kind: Categorical, Strings: strs})
		}
	}
	return New(cols...)
}
