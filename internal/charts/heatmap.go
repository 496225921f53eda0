package charts

import (
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
)

// matrixGrid adapts a square count matrix to plotter.GridXYZ with row 0 at the top.
type matrixGrid [][]int

func (g matrixGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g matrixGrid) Z(c, r int) float64 { return float64(g[len(g)-1-r][c]) }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

// ConfusionMatrix renders cm as an annotated heatmap. Rows are actual
// classes, columns predicted ones, both labelled by labels.
func (r *Renderer) ConfusionMatrix(cm [][]int, labels []string) ([]byte, error) {
	if len(cm) == 0 || len(cm) != len(labels) {
		return nil, fmt.Errorf("confusion matrix is %dx%d with %d labels", len(cm), len(cm), len(labels))
	}
	for i, row := range cm {
		if len(row) != len(cm) {
			return nil, fmt.Errorf("confusion matrix row %d has %d columns, expected %d", i, len(row), len(cm))
		}
	}

	grid := matrixGrid(cm)
	heat := plotter.NewHeatMap(grid, blues(64))
	if heat.Min == heat.Max {
		heat.Max = heat.Min + 1
	}

	n := len(cm)
	xys := make(plotter.XYs, 0, n*n)
	counts := make([]string, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			xys = append(xys, plotter.XY{X: float64(col), Y: float64(n - 1 - row)})
			counts = append(counts, strconv.Itoa(cm[row][col]))
		}
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: counts})
	if err != nil {
		return nil, fmt.Errorf("failed to build annotations: %w", err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = text.XCenter
		annotations.TextStyle[i].YAlign = text.YCenter
	}

	p := plot.New()
	p.Title.Text = "Confusion Matrix"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"
	p.Add(heat, annotations)
	p.NominalX(labels...)
	p.NominalY(reversed(labels)...)

	return encodePNG(p)
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}
