package engine

import (
	"math/rand"
	"sort"
)

// regressionForest is a bagged ensemble of multi-output regression
// trees, fit fresh per call and discarded afterwards.
type regressionForest struct {
	trees []*treeNode
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     []float64 // leaf mean, nil for internal nodes
}

type ForestConfig struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
}

func (c *ForestConfig) applyDefaults() {
	if c.Trees == 0 {
		c.Trees = 50
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = 6
	}
	if c.MinLeaf == 0 {
		c.MinLeaf = 2
	}
}

// fitForest trains the ensemble on descriptor rows X labeled with
// target rows Y. Bootstrap sampling and feature subsampling draw from
// the supplied rng, keeping the fit deterministic per seed.
func fitForest(X, Y [][]float64, cfg ForestConfig, rng *rand.Rand) *regressionForest {
	cfg.applyDefaults()

	f := &regressionForest{trees: make([]*treeNode, 0, cfg.Trees)}
	for t := 0; t < cfg.Trees; t++ {
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		f.trees = append(f.trees, buildTree(X, Y, idx, cfg.MaxDepth, cfg.MinLeaf, rng))
	}
	return f
}

func (f *regressionForest) predict(x []float64) []float64 {
	width := len(f.trees[0].leafFor(x).value)
	out := make([]float64, width)
	for _, tree := range f.trees {
		leaf := tree.leafFor(x)
		for j, v := range leaf.value {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(f.trees))
	}
	return out
}

func (n *treeNode) leafFor(x []float64) *treeNode {
	for n.value == nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n
}

func buildTree(X, Y [][]float64, idx []int, depth, minLeaf int, rng *rand.Rand) *treeNode {
	if depth == 0 || len(idx) < 2*minLeaf {
		return leafNode(Y, idx)
	}

	feature, threshold, ok := bestSplit(X, Y, idx, minLeaf, rng)
	if !ok {
		return leafNode(Y, idx)
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minLeaf || len(right) < minLeaf {
		return leafNode(Y, idx)
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(X, Y, left, depth-1, minLeaf, rng),
		right:     buildTree(X, Y, right, depth-1, minLeaf, rng),
	}
}

func leafNode(Y [][]float64, idx []int) *treeNode {
	width := len(Y[0])
	mean := make([]float64, width)
	for _, i := range idx {
		for j, v := range Y[i] {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(idx))
	}
	return &treeNode{value: mean}
}

// bestSplit scans a random subset of features for the threshold that
// minimizes the summed output variance of the two halves.
func bestSplit(X, Y [][]float64, idx []int, minLeaf int, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(X[0])

	candidates := rng.Perm(numFeatures)
	if numFeatures > 2 {
		candidates = candidates[:(numFeatures+1)/2]
	}

	bestScore := sse(Y, idx) // parent impurity
	bestFeature, bestThreshold := -1, 0.0
	found := false

	sorted := make([]int, len(idx))
	for _, feature := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool {
			return X[sorted[a]][feature] < X[sorted[b]][feature]
		})

		for cut := minLeaf; cut <= len(sorted)-minLeaf; cut++ {
			lo := X[sorted[cut-1]][feature]
			hi := X[sorted[cut]][feature]
			if lo == hi {
				continue
			}
			score := sse(Y, sorted[:cut]) + sse(Y, sorted[cut:])
			if score < bestScore {
				bestScore = score
				bestFeature = feature
				bestThreshold = (lo + hi) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func sse(Y [][]float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	width := len(Y[0])
	mean := make([]float64, width)
	for _, i := range idx {
		for j, v := range Y[i] {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(idx))
	}

	var total float64
	for _, i := range idx {
		for j, v := range Y[i] {
			d := v - mean[j]
			total += d * d
		}
	}
	return total
}
