package wordcloud

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// palette cycles through viridis-like colours by placement order
var palette = []drawing.Color{
	{R: 68, G: 1, B: 84, A: 255},
	{R: 59, G: 82, B: 139, A: 255},
	{R: 33, G: 145, B: 140, A: 255},
	{R: 94, G: 201, B: 98, A: 255},
	{R: 53, G: 183, B: 121, A: 255},
	{R: 49, G: 104, B: 142, A: 255},
	{R: 72, G: 40, B: 120, A: 255},
	{R: 144, G: 215, B: 67, A: 255},
}

// Render counts the words of text, lays them out and draws them as SVG on a
// white background. Text without any usable word renders an empty canvas.
func Render(text string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	words, err := Frequencies(text, opts)
	if err != nil {
		return nil, err
	}

	r, err := chart.SVG(opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	r.SetFont(font)

	r.SetFillColor(chart.ColorWhite)
	r.SetStrokeColor(chart.ColorWhite)
	r.SetStrokeWidth(0)
	r.MoveTo(0, 0)
	r.LineTo(opts.Width, 0)
	r.LineTo(opts.Width, opts.Height)
	r.LineTo(0, opts.Height)
	r.Close()
	r.Fill()

	measure := func(s string, size float64) (float64, float64) {
		r.SetFontSize(size)
		box := r.MeasureText(s)
		return float64(box.Width()), float64(box.Height())
	}

	for i, p := range Layout(words, opts, measure) {
		r.SetFontSize(p.FontSize)
		r.SetFontColor(palette[i%len(palette)])
		// SVG text is anchored at its baseline
		r.Text(p.Word.Text, int(p.X), int(p.Y+p.Height))
	}

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to render word cloud: %w", err)
	}
	return buf.Bytes(), nil
}
