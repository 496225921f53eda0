package charts

import (
	"fmt"
	"image/color"

	"netguard/internal/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// FeatureImportance renders features as a horizontal bar chart with the first
// entry on top.
func (r *Renderer) FeatureImportance(features []models.FeatureImportance) ([]byte, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("no feature importances to plot")
	}

	n := len(features)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, f := range features {
		values[n-1-i] = f.Importance
		names[n-1-i] = f.Feature
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = color.RGBA{R: 0x31, G: 0x82, B: 0xbd, A: 0xff}
	bars.LineStyle.Width = vg.Length(0)

	p := plot.New()
	p.Title.Text = "Top Feature Importances"
	p.X.Label.Text = "Importance"
	p.Y.Label.Text = "Feature"
	p.Add(bars)
	p.NominalY(names...)

	return encodePNG(p)
}
