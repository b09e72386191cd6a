package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// TrainTestSplit shuffles the rows of X and y with the given seed and
// splits them into train and test partitions. testSize is the fraction of
// rows assigned to the test partition, exclusive between 0 and 1.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", nSamples, yRows, 0)
	}
	if nSamples < 2 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "need at least 2 samples")
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	nTest := int(float64(nSamples) * testSize)
	if nTest == 0 {
		nTest = 1
	}
	if nTest == nSamples {
		nTest = nSamples - 1
	}
	nTrain := nSamples - nTest

	XTrain = mat.NewDense(nTrain, nFeatures, nil)
	XTest = mat.NewDense(nTest, nFeatures, nil)
	yTrain = mat.NewDense(nTrain, yCols, nil)
	yTest = mat.NewDense(nTest, yCols, nil)

	copyRow := func(dst *mat.Dense, dstRow int, src mat.Matrix, srcRow, cols int) {
		for j := 0; j < cols; j++ {
			dst.Set(dstRow, j, src.At(srcRow, j))
		}
	}

	for i := 0; i < nTrain; i++ {
		copyRow(XTrain, i, X, indices[i], nFeatures)
		copyRow(yTrain, i, y, indices[i], yCols)
	}
	for i := 0; i < nTest; i++ {
		copyRow(XTest, i, X, indices[nTrain+i], nFeatures)
		copyRow(yTest, i, y, indices[nTrain+i], yCols)
	}

	return XTrain, XTest, yTrain, yTest, nil
}
