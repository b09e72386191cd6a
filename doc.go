// Package boostpipe provides gradient-boosted-tree models embedded in
// scikit-learn-style preprocessing pipelines for tabular data.
//
// The library covers the full path from a raw CSV file to a scored model:
// loading a table with named columns and missing cells, imputing the gaps,
// encoding categorical fields, vectorizing records into a design matrix,
// fitting a boosted regressor or classifier, and estimating generalization
// with k-fold cross-validation or a randomized hyperparameter search.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/hectoramirez/boostpipe/boosting"
//	    "github.com/hectoramirez/boostpipe/pipeline"
//	    "github.com/hectoramirez/boostpipe/preprocessing"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 2, []float64{1, 10, 2, 20, 3, 30, 4, 40})
//	    y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//
//	    pipe := pipeline.New(
//	        pipeline.Step{Name: "impute", Estimator: preprocessing.NewSimpleImputer(preprocessing.ImputeMedian)},
//	        pipeline.Step{Name: "model", Estimator: boosting.NewGBRegressor()},
//	    )
//	    if err := pipe.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    pred, err := pipe.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(pred))
//	}
//
// # Package Layout
//
//   - dataset: Table type, CSV ingestion via gota, record adapter, train/test split
//   - preprocessing: imputers, label/one-hot encoders, DictVectorizer, scalers
//   - pipeline: chain-of-transformers composition with a final estimator
//   - boosting: gradient-boosted trees, cross-validation, randomized search
//   - metrics: regression and classification metrics, ROC curves
//   - core/model: estimator interfaces and fitted-state management
//   - pkg/errors, pkg/log: structured errors and logging
package boostpipe
