package charts

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGauge_RendersSVG(t *testing.T) {
	svg, err := Gauge(0.87, "Positivo")
	require.NoError(t, err)

	out := string(svg)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<svg"), "expected an svg document")
	assert.Contains(t, out, "Sentimento: Positivo")
	assert.Contains(t, out, "0.87")
	// first and last bands
	assert.Contains(t, out, "rgba(255,1,1,1.0)")
	assert.Contains(t, out, "rgba(9,255,0,1.0)")
}

func TestGauge_ClampsValue(t *testing.T) {
	high, err := Gauge(1.7, "Neutro")
	require.NoError(t, err)
	assert.Contains(t, string(high), "1.00")

	low, err := Gauge(-0.3, "Neutro")
	require.NoError(t, err)
	assert.Contains(t, string(low), "0.00")
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(math.NaN()))
	assert.Equal(t, 0.0, clamp01(-1))
	assert.Equal(t, 0.5, clamp01(0.5))
	assert.Equal(t, 1.0, clamp01(2))
}

func TestPolar(t *testing.T) {
	x, y := polar(100, 100, 50, 0)
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)

	x, y = polar(100, 100, 50, 0.5)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)

	x, y = polar(100, 100, 50, 1)
	assert.InDelta(t, 150, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)
}

func TestAnnularSector(t *testing.T) {
	points := annularSector(0, 0, 10, 20, 0, 0.1)
	require.Len(t, points, 2*(gaugeArcSteps+1))

	outer := math.Hypot(points[0][0], points[0][1])
	inner := math.Hypot(points[len(points)-1][0], points[len(points)-1][1])
	assert.InDelta(t, 20, outer, 1e-9)
	assert.InDelta(t, 10, inner, 1e-9)
}

func TestGaugeBands(t *testing.T) {
	assert.Len(t, GaugeBands, 10)
}

func TestProbabilityBars_RendersSVG(t *testing.T) {
	svg, err := ProbabilityBars([]string{"Negativo", "Neutro", "Positivo"}, []float64{0.1, 0.2, 0.7})
	require.NoError(t, err)

	out := string(svg)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<svg"), "expected an svg document")
	for _, label := range []string{"Negativo", "Neutro", "Positivo"} {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, BarsXName)
}

func TestProbabilityBars_Mismatch(t *testing.T) {
	_, err := ProbabilityBars([]string{"Negativo"}, []float64{0.1, 0.9})
	assert.ErrorIs(t, err, ErrMismatchedBars)
}

func TestProbabilityBars_Empty(t *testing.T) {
	_, err := ProbabilityBars(nil, nil)
	assert.Error(t, err)
}
