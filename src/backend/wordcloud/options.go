package wordcloud

// Options controls word counting and layout
type Options struct {
	Width           int
	Height          int
	MaxWords        int
	MaxFontSize     float64 // 0 derives it from Height
	MinFontSize     float64
	FontStep        float64 // multiplicative shrink applied when a word does not fit
	RelativeScaling float64 // 0 gives every word the same size, 1 scales strictly by frequency
	Stopwords       map[string]struct{}
}

// DefaultOptions returns the options used when a field is left zero
func DefaultOptions() Options {
	return Options{
		Width:           800,
		Height:          400,
		MaxWords:        200,
		MinFontSize:     4,
		FontStep:        0.9,
		RelativeScaling: 0.5,
		Stopwords:       DefaultStopwords(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.MaxWords <= 0 {
		o.MaxWords = d.MaxWords
	}
	if o.MaxFontSize <= 0 {
		o.MaxFontSize = float64(o.Height) * 0.3
	}
	if o.MinFontSize <= 0 {
		o.MinFontSize = d.MinFontSize
	}
	if o.FontStep <= 0 || o.FontStep >= 1 {
		o.FontStep = d.FontStep
	}
	if o.RelativeScaling < 0 || o.RelativeScaling > 1 {
		o.RelativeScaling = d.RelativeScaling
	}
	if o.Stopwords == nil {
		o.Stopwords = d.Stopwords
	}
	return o
}
