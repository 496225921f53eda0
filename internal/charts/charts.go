// Package charts renders the diagnostic plots returned by the predict endpoint.
package charts

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure size shared by both charts.
var (
	figureWidth  = 6 * vg.Inch
	figureHeight = 5 * vg.Inch
)

// Renderer draws charts as PNG bytes. The zero value is ready to use.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// blues is a light-to-dark sequential palette.
type blues int

func (n blues) Colors() []color.Color {
	light := color.RGBA{R: 0xf7, G: 0xfb, B: 0xff, A: 0xff}
	dark := color.RGBA{R: 0x08, G: 0x30, B: 0x6b, A: 0xff}
	out := make([]color.Color, int(n))
	for i := range out {
		t := float64(i) / float64(int(n)-1)
		out[i] = color.RGBA{
			R: lerp(light.R, dark.R, t),
			G: lerp(light.G, dark.G, t),
			B: lerp(light.B, dark.B, t),
			A: 0xff,
		}
	}
	return out
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

func encodePNG(p *plot.Plot) ([]byte, error) {
	c := vgimg.New(figureWidth, figureHeight)
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
