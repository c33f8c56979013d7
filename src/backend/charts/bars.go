package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Bar chart copy and geometry
const (
	BarsTitle  = "Distribuição de Probabilidades de Sentimento"
	BarsXName  = "Sentimento"
	BarsYName  = "Probabilidade"
	BarsWidth  = 600
	BarsHeight = 400
)

// ErrMismatchedBars is returned when labels and probabilities differ in length
var ErrMismatchedBars = errors.New("labels and probabilities must have the same length")

var barColor = drawing.Color{R: 99, G: 110, B: 250, A: 255}

// ProbabilityBars renders one bar per label on a fixed 0..1 axis
func ProbabilityBars(labels []string, probs []float64) ([]byte, error) {
	if len(labels) != len(probs) {
		return nil, ErrMismatchedBars
	}
	if len(labels) == 0 {
		return nil, errors.New("no bars to render")
	}

	bars := make([]chart.Value, len(labels))
	for i, label := range labels {
		bars[i] = chart.Value{
			Label: label,
			Value: clamp01(probs[i]),
			Style: chart.Style{
				FillColor:   barColor,
				StrokeColor: barColor,
				StrokeWidth: 1,
			},
		}
	}

	graph := chart.BarChart{
		Title:      BarsTitle,
		TitleStyle: chart.Style{FontSize: 14},
		Width:      BarsWidth,
		Height:     BarsHeight,
		BarWidth:   90,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 40}},
		YAxis: chart.YAxis{
			Name:  BarsYName,
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
			Ticks: []chart.Tick{
				{Value: 0, Label: "0"},
				{Value: 0.2, Label: "0.2"},
				{Value: 0.4, Label: "0.4"},
				{Value: 0.6, Label: "0.6"},
				{Value: 0.8, Label: "0.8"},
				{Value: 1, Label: "1"},
			},
		},
		Bars:     bars,
		Elements: []chart.Renderable{xAxisName(BarsXName)},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// xAxisName draws the category axis caption under the chart
func xAxisName(name string) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		defaults.WriteTextOptionsToRenderer(r)
		r.SetFontColor(chart.ColorBlack)
		r.SetFontSize(12)
		box := r.MeasureText(name)
		r.Text(name, canvas.Left+(canvas.Width()-box.Width())/2, BarsHeight-8)
	}
}
