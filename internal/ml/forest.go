package ml

import (
	"encoding/json"
	"fmt"
	"io"
)

// Node is one decision-tree node. Leaves have Left == -1 and carry the
// per-class weights in Value.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

// Tree is a flattened decision tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// RandomForest is an exported tree ensemble that predicts the class with the
// highest mean leaf probability.
type RandomForest struct {
	Classes     []Label   `json:"classes"`
	Importances []float64 `json:"feature_importances"`
	Trees       []Tree    `json:"trees"`
}

// DecodeRandomForest reads a classifier artifact and validates it against
// the expected feature count.
func DecodeRandomForest(r io.Reader, features int) (*RandomForest, error) {
	var f RandomForest
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode classifier: %w", err)
	}
	if err := f.validate(features); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *RandomForest) validate(features int) error {
	if len(f.Classes) == 0 {
		return fmt.Errorf("classifier has no classes")
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("classifier has no trees")
	}
	if len(f.Importances) != features {
		return fmt.Errorf("classifier has %d feature importances, expected %d", len(f.Importances), features)
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Left == -1 {
				if len(n.Value) != len(f.Classes) {
					return fmt.Errorf("tree %d leaf %d has %d class weights, expected %d", ti, ni, len(n.Value), len(f.Classes))
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= features {
				return fmt.Errorf("tree %d node %d splits on feature %d out of range", ti, ni, n.Feature)
			}
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d has child index out of range", ti, ni)
			}
		}
	}
	return nil
}

// FeatureImportances returns the per-feature importance scores in schema order.
func (f *RandomForest) FeatureImportances() []float64 {
	return append([]float64(nil), f.Importances...)
}

// Predict returns one label per row of x.
func (f *RandomForest) Predict(x [][]float64) []Label {
	out := make([]Label, len(x))
	proba := make([]float64, len(f.Classes))
	for i, row := range x {
		for k := range proba {
			proba[k] = 0
		}
		for _, t := range f.Trees {
			leaf := t.leaf(row)
			var total float64
			for _, w := range leaf.Value {
				total += w
			}
			if total == 0 {
				continue
			}
			for k, w := range leaf.Value {
				proba[k] += w / total
			}
		}
		best := 0
		for k := 1; k < len(proba); k++ {
			if proba[k] > proba[best] {
				best = k
			}
		}
		out[i] = f.Classes[best]
	}
	return out
}

func (t Tree) leaf(row []float64) Node {
	n := t.Nodes[0]
	for n.Left != -1 {
		if row[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n
}
