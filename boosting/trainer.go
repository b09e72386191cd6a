package boosting

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/hectoramirez/boostpipe/core/parallel"
	"github.com/hectoramirez/boostpipe/pkg/errors"
	"github.com/hectoramirez/boostpipe/pkg/log"
)

// TrainingParams holds the trainer hyperparameters.
type TrainingParams struct {
	NumRounds    int
	LearningRate float64
	MaxDepth     int

	// Regularization
	Lambda         float64 // L2 on leaf values
	Alpha          float64 // L1 on leaf values
	MinGainToSplit float64
	MinSamplesLeaf int
	MinChildWeight float64 // minimum hessian sum per leaf

	// Sampling
	Subsample       float64 // row fraction per round
	ColsampleByTree float64 // feature fraction per tree

	Objective string
	Seed      int64
	Verbosity int
}

// withDefaults fills zero-valued fields with the trainer defaults.
func (p TrainingParams) withDefaults() TrainingParams {
	if p.NumRounds == 0 {
		p.NumRounds = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = 6
	}
	if p.MinSamplesLeaf == 0 {
		p.MinSamplesLeaf = 1
	}
	if p.Subsample == 0 {
		p.Subsample = 1.0
	}
	if p.ColsampleByTree == 0 {
		p.ColsampleByTree = 1.0
	}
	if p.Objective == "" {
		p.Objective = ObjectiveSquaredError
	}
	return p
}

// splitInfo describes the best split found for a node.
type splitInfo struct {
	feature     int
	threshold   float64
	gain        float64
	defaultLeft bool
}

// Trainer grows one regression tree per round against the gradient and
// hessian of the objective, exact greedy over sorted feature values.
type Trainer struct {
	params    TrainingParams
	objective ObjectiveFunction
	logger    log.Logger

	X *mat.Dense
	y []float64

	rawScores []float64
	gradients []float64
	hessians  []float64

	trees     []Tree
	initScore float64
	rng       *rand.Rand
}

// NewTrainer creates a trainer with defaults filled in for unset params.
func NewTrainer(params TrainingParams) *Trainer {
	return &Trainer{
		params: params.withDefaults(),
		logger: log.GetLoggerWithName("boosting.trainer"),
	}
}

// Fit runs the boosting rounds against X and the single-column target y.
func (t *Trainer) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("Fit", 1, yCols, 1)
	}
	if rows == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}

	objective, err := NewObjective(t.params.Objective)
	if err != nil {
		return err
	}
	t.objective = objective

	t.X = mat.DenseCopyOf(X)
	t.y = make([]float64, rows)
	for i := 0; i < rows; i++ {
		t.y[i] = y.At(i, 0)
	}

	t.initScore = t.objective.InitScore(t.y)
	t.rawScores = make([]float64, rows)
	for i := range t.rawScores {
		t.rawScores[i] = t.initScore
	}
	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)
	t.trees = t.trees[:0]

	t.rng = rand.New(rand.NewPCG(uint64(t.params.Seed), uint64(t.params.Seed)+1))

	for round := 0; round < t.params.NumRounds; round++ {
		t.computeGradients()

		if err := errors.CheckNumericalStability("gradient computation", t.gradients, round); err != nil {
			return err
		}

		rowIdx := t.sampleRows(rows)
		features := t.sampleFeatures(cols)

		tree := t.buildTree(rowIdx, features)
		t.trees = append(t.trees, tree)
		t.updateScores(&tree)

		if t.params.Verbosity > 0 && round%10 == 0 {
			t.logger.Debug("training progress",
				log.IterationKey, round,
				log.LossKey, t.currentLoss(),
			)
		}
	}

	return nil
}

// Model returns the trained ensemble.
func (t *Trainer) Model() *Model {
	_, cols := t.X.Dims()
	return &Model{
		Trees:        t.trees,
		NumFeatures:  cols,
		InitScore:    t.initScore,
		Objective:    t.objective.Name(),
		LearningRate: t.params.LearningRate,
		MaxDepth:     t.params.MaxDepth,
	}
}

func (t *Trainer) computeGradients() {
	parallel.ParallelizeWithThreshold(len(t.y), 256, func(start, end int) {
		for i := start; i < end; i++ {
			t.gradients[i] = t.objective.Gradient(t.rawScores[i], t.y[i])
			t.hessians[i] = t.objective.Hessian(t.rawScores[i], t.y[i])
		}
	})
}

// sampleRows draws a Subsample fraction of row indices without replacement.
func (t *Trainer) sampleRows(rows int) []int {
	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}
	if t.params.Subsample >= 1.0 {
		return indices
	}

	t.rng.Shuffle(rows, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	n := int(float64(rows) * t.params.Subsample)
	if n < 1 {
		n = 1
	}
	sampled := indices[:n]
	sort.Ints(sampled)
	return sampled
}

// sampleFeatures draws a ColsampleByTree fraction of feature indices.
func (t *Trainer) sampleFeatures(cols int) []int {
	features := make([]int, cols)
	for i := range features {
		features[i] = i
	}
	if t.params.ColsampleByTree >= 1.0 {
		return features
	}

	t.rng.Shuffle(cols, func(i, j int) {
		features[i], features[j] = features[j], features[i]
	})
	n := int(float64(cols) * t.params.ColsampleByTree)
	if n < 1 {
		n = 1
	}
	sampled := features[:n]
	sort.Ints(sampled)
	return sampled
}

func (t *Trainer) buildTree(indices, features []int) Tree {
	tree := Tree{ShrinkageRate: t.params.LearningRate}
	t.buildNode(&tree, indices, features, 0)

	for _, node := range tree.Nodes {
		if node.IsLeaf() {
			tree.NumLeaves++
		}
	}
	return tree
}

// buildNode grows the subtree rooted at the given samples and returns its
// node index within the tree.
func (t *Trainer) buildNode(tree *Tree, indices, features []int, depth int) int {
	nodeIdx := len(tree.Nodes)

	if depth >= t.params.MaxDepth || len(indices) < 2*t.params.MinSamplesLeaf {
		tree.Nodes = append(tree.Nodes, t.makeLeaf(indices))
		return nodeIdx
	}

	best := t.findBestSplit(indices, features)
	if best.gain <= t.params.MinGainToSplit {
		tree.Nodes = append(tree.Nodes, t.makeLeaf(indices))
		return nodeIdx
	}

	tree.Nodes = append(tree.Nodes, Node{
		SplitFeature: best.feature,
		Threshold:    best.threshold,
		DefaultLeft:  best.defaultLeft,
		Gain:         best.gain,
		LeftChild:    -1,
		RightChild:   -1,
	})

	left, right := t.partition(indices, best)
	leftChild := t.buildNode(tree, left, features, depth+1)
	rightChild := t.buildNode(tree, right, features, depth+1)
	tree.Nodes[nodeIdx].LeftChild = leftChild
	tree.Nodes[nodeIdx].RightChild = rightChild
	return nodeIdx
}

func (t *Trainer) makeLeaf(indices []int) Node {
	sumGrad, sumHess := 0.0, 0.0
	for _, idx := range indices {
		sumGrad += t.gradients[idx]
		sumHess += t.hessians[idx]
	}
	return Node{
		LeftChild:  -1,
		RightChild: -1,
		LeafValue:  t.leafValue(sumGrad, sumHess),
		LeafCount:  len(indices),
	}
}

// leafValue is the regularized optimum -G/(H+lambda) with L1
// soft-thresholding of the gradient sum.
func (t *Trainer) leafValue(sumGrad, sumHess float64) float64 {
	g := thresholdL1(sumGrad, t.params.Alpha)
	denom := sumHess + t.params.Lambda
	if denom < 1e-10 {
		denom = 1e-10
	}
	return -g / denom
}

func thresholdL1(g, alpha float64) float64 {
	switch {
	case g > alpha:
		return g - alpha
	case g < -alpha:
		return g + alpha
	default:
		return 0
	}
}

func (t *Trainer) splitScore(sumGrad, sumHess float64) float64 {
	g := thresholdL1(sumGrad, t.params.Alpha)
	return g * g / (sumHess + t.params.Lambda + 1e-10)
}

// findBestSplit searches candidate features in parallel and keeps the
// highest-gain split.
func (t *Trainer) findBestSplit(indices, features []int) splitInfo {
	best := splitInfo{gain: math.Inf(-1)}
	var mu sync.Mutex

	parallel.ParallelizeWithThreshold(len(features), 4, func(start, end int) {
		local := splitInfo{gain: math.Inf(-1)}
		for f := start; f < end; f++ {
			split := t.findBestSplitForFeature(indices, features[f])
			if split.gain > local.gain {
				local = split
			}
		}

		mu.Lock()
		if local.gain > best.gain ||
			(local.gain == best.gain && local.feature < best.feature) {
			best = local
		}
		mu.Unlock()
	})

	return best
}

// findBestSplitForFeature scans the sorted present values of one feature.
// Rows with a missing value are tried on both sides of each candidate and
// the better direction is recorded as the split default.
func (t *Trainer) findBestSplitForFeature(indices []int, feature int) splitInfo {
	type sample struct {
		value float64
		idx   int
	}
	present := make([]sample, 0, len(indices))

	totalGrad, totalHess := 0.0, 0.0
	missGrad, missHess := 0.0, 0.0
	missCount := 0
	for _, idx := range indices {
		g, h := t.gradients[idx], t.hessians[idx]
		totalGrad += g
		totalHess += h

		v := t.X.At(idx, feature)
		if math.IsNaN(v) {
			missGrad += g
			missHess += h
			missCount++
			continue
		}
		present = append(present, sample{value: v, idx: idx})
	}
	if len(present) < 2 {
		return splitInfo{feature: feature, gain: math.Inf(-1)}
	}

	sort.Slice(present, func(i, j int) bool { return present[i].value < present[j].value })

	parentScore := t.splitScore(totalGrad, totalHess)
	best := splitInfo{feature: feature, gain: math.Inf(-1)}

	leftGrad, leftHess := 0.0, 0.0
	leftCount := 0
	for i := 0; i < len(present)-1; i++ {
		leftGrad += t.gradients[present[i].idx]
		leftHess += t.hessians[present[i].idx]
		leftCount++

		if present[i].value == present[i+1].value {
			continue
		}
		threshold := (present[i].value + present[i+1].value) / 2

		rightGrad := totalGrad - missGrad - leftGrad
		rightHess := totalHess - missHess - leftHess
		rightCount := len(present) - leftCount

		// missing rows on the left
		if t.checkLeafCounts(leftCount+missCount, rightCount) &&
			t.checkChildWeights(leftHess+missHess, rightHess) {
			gain := 0.5 * (t.splitScore(leftGrad+missGrad, leftHess+missHess) +
				t.splitScore(rightGrad, rightHess) - parentScore)
			if gain > best.gain {
				best.gain = gain
				best.threshold = threshold
				best.defaultLeft = true
			}
		}

		// missing rows on the right
		if t.checkLeafCounts(leftCount, rightCount+missCount) &&
			t.checkChildWeights(leftHess, rightHess+missHess) {
			gain := 0.5 * (t.splitScore(leftGrad, leftHess) +
				t.splitScore(rightGrad+missGrad, rightHess+missHess) - parentScore)
			if gain > best.gain {
				best.gain = gain
				best.threshold = threshold
				best.defaultLeft = false
			}
		}
	}

	return best
}

func (t *Trainer) checkLeafCounts(left, right int) bool {
	return left >= t.params.MinSamplesLeaf && right >= t.params.MinSamplesLeaf
}

func (t *Trainer) checkChildWeights(left, right float64) bool {
	return left >= t.params.MinChildWeight && right >= t.params.MinChildWeight
}

// partition routes samples to the two children of a split. Missing values
// follow the split default.
func (t *Trainer) partition(indices []int, split splitInfo) (left, right []int) {
	for _, idx := range indices {
		v := t.X.At(idx, split.feature)
		switch {
		case math.IsNaN(v):
			if split.defaultLeft {
				left = append(left, idx)
			} else {
				right = append(right, idx)
			}
		case v <= split.threshold:
			left = append(left, idx)
		default:
			right = append(right, idx)
		}
	}
	return left, right
}

// updateScores adds the new tree's shrunk output to every cached margin,
// subsampled rows included.
func (t *Trainer) updateScores(tree *Tree) {
	rows, cols := t.X.Dims()
	parallel.ParallelizeWithThreshold(rows, 256, func(start, end int) {
		features := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(features, i, t.X)
			t.rawScores[i] += tree.Predict(features)
		}
	})
}

func (t *Trainer) currentLoss() float64 {
	loss := 0.0
	for i := range t.y {
		loss += t.objective.Loss(t.rawScores[i], t.y[i])
	}
	return loss / float64(len(t.y))
}
