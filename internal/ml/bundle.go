// Package ml holds the read-only model artifacts used for scoring uploads
// and the metrics computed over their predictions.
package ml

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Classifier scores scaled feature rows.
type Classifier interface {
	Predict(x [][]float64) []Label
	FeatureImportances() []float64
}

// Transformer applies the fitted scaling to feature rows.
type Transformer interface {
	Transform(x [][]float64) ([][]float64, error)
}

// Bundle is the model state loaded once at startup. It is never mutated
// after construction and is safe for concurrent use.
type Bundle struct {
	features   []string
	scaler     Transformer
	classifier Classifier
	labels     LabelMapping
}

// ArtifactPaths locates the three artifact files.
type ArtifactPaths struct {
	Classifier string
	Scaler     string
	Features   string
}

// NewBundle assembles a bundle from already-loaded parts.
func NewBundle(features []string, scaler Transformer, classifier Classifier, labels LabelMapping) *Bundle {
	return &Bundle{
		features:   append([]string(nil), features...),
		scaler:     scaler,
		classifier: classifier,
		labels:     labels,
	}
}

// LoadBundle reads the feature schema, scaler and classifier and checks that
// their widths agree.
func LoadBundle(paths ArtifactPaths) (*Bundle, error) {
	features, err := ReadFeatureSchema(paths.Features)
	if err != nil {
		return nil, err
	}

	sf, err := os.Open(paths.Scaler)
	if err != nil {
		return nil, fmt.Errorf("failed to open scaler: %w", err)
	}
	defer sf.Close()
	scaler, err := DecodeScaler(sf)
	if err != nil {
		return nil, err
	}
	if scaler.Width() != len(features) {
		return nil, fmt.Errorf("scaler fitted on %d columns, feature schema has %d", scaler.Width(), len(features))
	}

	cf, err := os.Open(paths.Classifier)
	if err != nil {
		return nil, fmt.Errorf("failed to open classifier: %w", err)
	}
	defer cf.Close()
	forest, err := DecodeRandomForest(cf, len(features))
	if err != nil {
		return nil, err
	}

	return NewBundle(features, scaler, forest, DefaultLabelMapping()), nil
}

// ReadFeatureSchema reads the first line of path as comma-separated column names.
func ReadFeatureSchema(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open feature schema: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read feature schema: %w", err)
		}
		return nil, fmt.Errorf("feature schema %s is empty", path)
	}

	parts := strings.Split(sc.Text(), ",")
	features := make([]string, 0, len(parts))
	for i, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			return nil, fmt.Errorf("feature schema %s has an empty name at position %d", path, i)
		}
		features = append(features, name)
	}
	return features, nil
}

// Features returns the expected columns in schema order.
func (b *Bundle) Features() []string {
	return append([]string(nil), b.features...)
}

// Labels returns the label mapping.
func (b *Bundle) Labels() LabelMapping {
	return b.labels
}

// Scaler returns the fitted transform.
func (b *Bundle) Scaler() Transformer {
	return b.scaler
}

// Classifier returns the scoring model.
func (b *Bundle) Classifier() Classifier {
	return b.classifier
}
