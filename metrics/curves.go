package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// ROCPoint is a single operating point of the ROC curve.
type ROCPoint struct {
	FPR       float64
	TPR       float64
	Threshold float64
}

// ROCCurve computes the ROC operating points for binary labels and scores,
// ordered from threshold +inf (origin) down to the lowest score.
func ROCCurve(yTrue, yPred *mat.VecDense) ([]ROCPoint, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("ROCCurve", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("ROCCurve", n, yPred.Len(), 0)
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return nil, errors.NewValueError("ROCCurve", "labels must be 0 or 1")
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, errors.NewValueError("ROCCurve", "both classes must be present")
	}

	type scored struct {
		score float64
		label float64
	}
	items := make([]scored, n)
	for i := 0; i < n; i++ {
		items[i] = scored{score: yPred.AtVec(i), label: yTrue.AtVec(i)}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].score > items[j].score })

	points := []ROCPoint{{FPR: 0, TPR: 0, Threshold: items[0].score + 1}}
	tp, fp := 0, 0
	for i := 0; i < n; {
		j := i
		for j < n && items[j].score == items[i].score {
			if items[j].label == 1 {
				tp++
			} else {
				fp++
			}
			j++
		}
		points = append(points, ROCPoint{
			FPR:       float64(fp) / float64(nNeg),
			TPR:       float64(tp) / float64(nPos),
			Threshold: items[i].score,
		})
		i = j
	}

	return points, nil
}

// SaveROCCurve computes the ROC curve and renders it to an image file; the
// format follows the file extension (png, svg, pdf).
func SaveROCCurve(yTrue, yPred *mat.VecDense, title, path string) error {
	points, err := ROCCurve(yTrue, yPred)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.FPR
		xys[i].Y = pt.TPR
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrap(err, "failed to build ROC line")
	}
	p.Add(line)

	// chance diagonal for reference
	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "failed to build diagonal")
	}
	diag.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(diag)

	if err := p.Save(4*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save ROC curve to %s", path)
	}
	return nil
}
