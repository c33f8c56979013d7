// Package charts renders the result charts of a sentiment analysis as SVG.
package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Gauge geometry
const (
	GaugeWidth  = 500
	GaugeHeight = 320

	gaugeOuterRadius = 180.0
	gaugeInnerRadius = 110.0
	gaugeArcSteps    = 24 // polygon segments per band

	thresholdWidth     = 4.0
	thresholdThickness = 0.75 // fraction of the band depth
	valueBarThickness  = 0.3  // fraction of the band depth

	titleFontSize = 22.0
	valueFontSize = 36.0
	tickFontSize  = 11.0
)

var tickColor = drawing.Color{R: 0, G: 0, B: 139, A: 255} // darkblue

// GaugeBands are the colours of the ten 0.1-wide gauge steps, red to green
var GaugeBands = []drawing.Color{
	{R: 255, G: 1, B: 1, A: 255},
	{R: 255, G: 84, B: 0, A: 255},
	{R: 255, G: 167, B: 0, A: 255},
	{R: 255, G: 214, B: 0, A: 255},
	{R: 255, G: 214, B: 0, A: 255},
	{R: 241, G: 255, B: 1, A: 255},
	{R: 198, G: 255, B: 0, A: 255},
	{R: 155, G: 255, B: 0, A: 255},
	{R: 9, G: 255, B: 0, A: 255},
	{R: 9, G: 255, B: 0, A: 255},
}

// Gauge renders a half-circle confidence gauge for value in [0,1] titled with
// the predicted label. Out-of-range values are clamped.
func Gauge(value float64, label string) ([]byte, error) {
	value = clamp01(value)

	r, err := chart.SVG(GaugeWidth, GaugeHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	r.SetFont(font)

	cx, cy := float64(GaugeWidth)/2, float64(GaugeHeight)-70

	// Background
	fillPolygon(r, chart.ColorWhite, [][2]float64{
		{0, 0}, {GaugeWidth, 0}, {GaugeWidth, GaugeHeight}, {0, GaugeHeight},
	})

	// Coloured steps
	step := 1.0 / float64(len(GaugeBands))
	for i, color := range GaugeBands {
		from, to := float64(i)*step, float64(i+1)*step
		fillPolygon(r, color, annularSector(cx, cy, gaugeInnerRadius, gaugeOuterRadius, from, to))
	}

	// Value bar along the middle of the band
	depth := gaugeOuterRadius - gaugeInnerRadius
	mid := gaugeInnerRadius + depth/2
	half := depth * valueBarThickness / 2
	if value > 0 {
		fillPolygon(r, chart.ColorBlack, annularSector(cx, cy, mid-half, mid+half, 0, value))
	}

	// Threshold marker at the value
	tHalf := depth * thresholdThickness / 2
	x0, y0 := polar(cx, cy, mid-tHalf, value)
	x1, y1 := polar(cx, cy, mid+tHalf, value)
	r.SetStrokeColor(chart.ColorBlack)
	r.SetStrokeWidth(thresholdWidth)
	r.MoveTo(round(x0), round(y0))
	r.LineTo(round(x1), round(y1))
	r.Stroke()

	// Axis ticks and labels
	r.SetStrokeWidth(1)
	r.SetFontSize(tickFontSize)
	r.SetFontColor(chart.ColorBlack)
	for i := 0; i <= 10; i++ {
		v := float64(i) / 10
		tx0, ty0 := polar(cx, cy, gaugeOuterRadius, v)
		tx1, ty1 := polar(cx, cy, gaugeOuterRadius+6, v)
		r.SetStrokeColor(tickColor)
		r.MoveTo(round(tx0), round(ty0))
		r.LineTo(round(tx1), round(ty1))
		r.Stroke()

		text := fmt.Sprintf("%.1f", v)
		lx, ly := polar(cx, cy, gaugeOuterRadius+18, v)
		box := r.MeasureText(text)
		r.Text(text, round(lx)-box.Width()/2, round(ly)+box.Height()/2)
	}

	// Current value
	r.SetFontSize(valueFontSize)
	drawCentered(r, fmt.Sprintf("%.2f", value), cx, cy+40)

	// Title
	r.SetFontSize(titleFontSize)
	drawCentered(r, "Sentimento: "+label, cx, 34)

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to render gauge: %w", err)
	}
	return buf.Bytes(), nil
}

// polar maps a gauge value onto the half circle, 0 on the left and 1 on the right
func polar(cx, cy, radius, value float64) (float64, float64) {
	theta := math.Pi * (1 - value)
	return cx + radius*math.Cos(theta), cy - radius*math.Sin(theta)
}

// annularSector approximates the ring segment between two gauge values
func annularSector(cx, cy, inner, outer, from, to float64) [][2]float64 {
	points := make([][2]float64, 0, 2*(gaugeArcSteps+1))
	for i := 0; i <= gaugeArcSteps; i++ {
		v := from + (to-from)*float64(i)/gaugeArcSteps
		x, y := polar(cx, cy, outer, v)
		points = append(points, [2]float64{x, y})
	}
	for i := gaugeArcSteps; i >= 0; i-- {
		v := from + (to-from)*float64(i)/gaugeArcSteps
		x, y := polar(cx, cy, inner, v)
		points = append(points, [2]float64{x, y})
	}
	return points
}

func fillPolygon(r chart.Renderer, color drawing.Color, points [][2]float64) {
	if len(points) == 0 {
		return
	}
	r.SetFillColor(color)
	r.SetStrokeColor(color)
	r.SetStrokeWidth(0.5)
	r.MoveTo(round(points[0][0]), round(points[0][1]))
	for _, p := range points[1:] {
		r.LineTo(round(p[0]), round(p[1]))
	}
	r.Close()
	r.FillStroke()
}

func drawCentered(r chart.Renderer, text string, cx, baseline float64) {
	box := r.MeasureText(text)
	r.Text(text, round(cx)-box.Width()/2, round(baseline))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round(v float64) int {
	return int(math.Round(v))
}
