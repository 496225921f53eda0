package ml

import (
	"encoding/json"
	"fmt"
	"io"
)

// Scaler is a pre-fitted per-column affine transform.
type Scaler struct {
	Kind  string    `json:"kind"`
	Mean  []float64 `json:"mean,omitempty"`
	Min   []float64 `json:"min,omitempty"`
	Scale []float64 `json:"scale"`
}

// DecodeScaler reads a scaler artifact and checks its shape.
func DecodeScaler(r io.Reader) (*Scaler, error) {
	var s Scaler
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scaler: %w", err)
	}
	if s.Kind == "" {
		s.Kind = "standard"
	}
	switch s.Kind {
	case "standard":
		if len(s.Mean) != len(s.Scale) {
			return nil, fmt.Errorf("standard scaler has %d means and %d scales", len(s.Mean), len(s.Scale))
		}
	case "minmax":
		if len(s.Min) != len(s.Scale) {
			return nil, fmt.Errorf("minmax scaler has %d mins and %d scales", len(s.Min), len(s.Scale))
		}
	default:
		return nil, fmt.Errorf("unknown scaler kind %q", s.Kind)
	}
	return &s, nil
}

// Width is the number of columns the scaler was fitted on.
func (s *Scaler) Width() int {
	return len(s.Scale)
}

// Transform returns a scaled copy of x. Every row must have Width columns.
func (s *Scaler) Transform(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != s.Width() {
			return nil, fmt.Errorf("row %d has %d columns, scaler expects %d", i, len(row), s.Width())
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			if s.Kind == "minmax" {
				scaled[j] = v*s.Scale[j] + s.Min[j]
				continue
			}
			scale := s.Scale[j]
			if scale == 0 {
				scale = 1
			}
			scaled[j] = (v - s.Mean[j]) / scale
		}
		out[i] = scaled
	}
	return out, nil
}
