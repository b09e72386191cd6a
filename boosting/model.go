// Package boosting implements gradient-boosted decision trees for
// regression and binary classification, with k-fold cross-validation and
// randomized hyperparameter search on top.
package boosting

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/parallel"
	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// Node is a single node of a decision tree. Leaves are encoded with
// LeftChild and RightChild set to -1.
type Node struct {
	LeftChild  int
	RightChild int

	// Split information
	SplitFeature int
	Threshold    float64
	DefaultLeft  bool // direction taken by missing values
	Gain         float64

	// Leaf information
	LeafValue float64
	LeafCount int
}

// IsLeaf reports whether the node is terminal.
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree is one regression tree of the ensemble. Nodes are stored in a flat
// slice with the root at index 0.
type Tree struct {
	Nodes         []Node
	NumLeaves     int
	ShrinkageRate float64
}

// Predict evaluates the tree for a single feature vector. Missing values
// (NaN) follow each split's default direction.
func (t *Tree) Predict(features []float64) float64 {
	nodeID := 0
	for nodeID >= 0 && nodeID < len(t.Nodes) {
		node := &t.Nodes[nodeID]
		if node.IsLeaf() {
			return node.LeafValue * t.ShrinkageRate
		}

		value := features[node.SplitFeature]
		switch {
		case math.IsNaN(value):
			if node.DefaultLeft {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
		case value <= node.Threshold:
			nodeID = node.LeftChild
		default:
			nodeID = node.RightChild
		}
	}
	return 0
}

// Model is a trained ensemble of trees sharing one objective.
type Model struct {
	Trees       []Tree
	NumFeatures int
	InitScore   float64
	Objective   string

	LearningRate float64
	MaxDepth     int
}

// RawPredict returns the untransformed ensemble margin for one sample.
func (m *Model) RawPredict(features []float64) float64 {
	score := m.InitScore
	for i := range m.Trees {
		score += m.Trees[i].Predict(features)
	}
	return score
}

// PredictSingle returns the transformed prediction for one sample. For the
// logistic objective the margin is passed through a sigmoid.
func (m *Model) PredictSingle(features []float64) float64 {
	raw := m.RawPredict(features)
	if m.Objective == ObjectiveLogistic {
		return sigmoid(raw)
	}
	return raw
}

// Predict evaluates the ensemble for every row of X. Rows are scored in
// parallel across CPU cores.
func (m *Model) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, cols := X.Dims()
	if cols != m.NumFeatures {
		return nil, errors.NewDimensionError("Predict", m.NumFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	parallel.ParallelizeWithThreshold(rows, 64, func(start, end int) {
		features := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(features, i, X)
			predictions.Set(i, 0, m.PredictSingle(features))
		}
	})
	return predictions, nil
}

// FeatureImportance returns normalized per-feature importance scores.
// importanceType is "split" (number of times a feature is used) or "gain"
// (total split gain attributed to the feature).
func (m *Model) FeatureImportance(importanceType string) ([]float64, error) {
	if importanceType != "split" && importanceType != "gain" {
		return nil, errors.NewValueError("FeatureImportance", "importance type must be 'split' or 'gain'")
	}

	importance := make([]float64, m.NumFeatures)
	for _, tree := range m.Trees {
		for _, node := range tree.Nodes {
			if node.IsLeaf() {
				continue
			}
			if importanceType == "split" {
				importance[node.SplitFeature]++
			} else {
				importance[node.SplitFeature] += node.Gain
			}
		}
	}

	total := 0.0
	for _, v := range importance {
		total += v
	}
	if total > 0 {
		for i := range importance {
			importance[i] /= total
		}
	}
	return importance, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
