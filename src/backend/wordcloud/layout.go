package wordcloud

import "math"

// Measurer returns the width and height of text drawn at the given font size
type Measurer func(text string, fontSize float64) (width, height float64)

// Placement is a word positioned on the canvas. X and Y are the top-left
// corner of its bounding box.
type Placement struct {
	Word     Word    `json:"word"`
	FontSize float64 `json:"font_size"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

const (
	spiralStep    = 0.2 // radians per probe
	spiralSpacing = 3.0 // pixels of radius gained per radian
	wordMargin    = 2.0
)

// Layout places words, most frequent first, along an Archimedean spiral
// from the canvas centre. A word that does not fit is shrunk by FontStep
// until it fits; placement stops at the first word that cannot fit at
// MinFontSize. The result is deterministic for the same input.
func Layout(words []Word, opts Options, measure Measurer) []Placement {
	opts = opts.withDefaults()
	width, height := float64(opts.Width), float64(opts.Height)
	aspect := width / height
	maxRadius := math.Hypot(width, height) / 2

	placed := make([]Placement, 0, len(words))
	for _, w := range words {
		size := opts.MaxFontSize * (opts.RelativeScaling*w.Weight + (1 - opts.RelativeScaling))
		// never larger than the previous word
		if n := len(placed); n > 0 && size > placed[n-1].FontSize {
			size = placed[n-1].FontSize
		}

		var p Placement
		found := false
		for ; size >= opts.MinFontSize; size *= opts.FontStep {
			bw, bh := measure(w.Text, size)
			if bw > width || bh > height {
				continue
			}
			if x, y, ok := findSpot(placed, bw, bh, width, height, aspect, maxRadius); ok {
				p = Placement{Word: w, FontSize: size, X: x, Y: y, Width: bw, Height: bh}
				found = true
				break
			}
		}
		if !found {
			break
		}
		placed = append(placed, p)
	}
	return placed
}

// findSpot walks the spiral until a box of w×h fits inside the canvas
// without touching any placed word
func findSpot(placed []Placement, w, h, width, height, aspect, maxRadius float64) (float64, float64, bool) {
	cx, cy := width/2, height/2
	for theta := 0.0; ; theta += spiralStep {
		r := spiralSpacing * theta
		if r > maxRadius*aspect {
			return 0, 0, false
		}
		x := cx + r*math.Cos(theta) - w/2
		y := cy + r*math.Sin(theta)/aspect - h/2
		if x < 0 || y < 0 || x+w > width || y+h > height {
			continue
		}
		if !collides(placed, x, y, w, h) {
			return x, y, true
		}
	}
}

func collides(placed []Placement, x, y, w, h float64) bool {
	for _, p := range placed {
		if x < p.X+p.Width+wordMargin && p.X < x+w+wordMargin &&
			y < p.Y+p.Height+wordMargin && p.Y < y+h+wordMargin {
			return true
		}
	}
	return false
}
