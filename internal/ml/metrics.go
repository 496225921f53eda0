package ml

import (
	"math"
	"sort"

	"netguard/internal/models"
)

// ClassDistribution returns, per distinct predicted label, the share of rows
// as a percentage rounded to two decimals. Shares are rounded independently
// and need not sum to exactly 100.
func ClassDistribution(pred []Label, mapping LabelMapping) map[string]float64 {
	out := make(map[string]float64)
	if len(pred) == 0 {
		return out
	}
	counts := make(map[Label]int)
	for _, p := range pred {
		counts[p]++
	}
	n := float64(len(pred))
	for label, c := range counts {
		out[mapping.Name(label)] = round2(float64(c) / n * 100)
	}
	return out
}

// ConfusionMatrix counts actual (rows) against predicted (columns) using the
// given label order. Pairs with either side outside labels are not counted.
func ConfusionMatrix(actual, pred []Label, labels []Label) [][]int {
	pos := make(map[Label]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	cm := make([][]int, len(labels))
	for i := range cm {
		cm[i] = make([]int, len(labels))
	}
	n := len(actual)
	if len(pred) < n {
		n = len(pred)
	}
	for i := 0; i < n; i++ {
		r, okR := pos[actual[i]]
		c, okC := pos[pred[i]]
		if okR && okC {
			cm[r][c]++
		}
	}
	return cm
}

// TopFeatures pairs names with importances and returns the k most important,
// descending. Equal importances keep their schema order.
func TopFeatures(names []string, importances []float64, k int) []models.FeatureImportance {
	n := len(names)
	if len(importances) < n {
		n = len(importances)
	}
	all := make([]models.FeatureImportance, n)
	for i := 0; i < n; i++ {
		all[i] = models.FeatureImportance{Feature: names[i], Importance: importances[i]}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Importance > all[j].Importance
	})
	if k >= 0 && len(all) > k {
		all = all[:k]
	}
	return all
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
