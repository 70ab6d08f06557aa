// Package ascii draws line and bar figures as terminal graphs with
// asciigraph.
package ascii

import (
	"io"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// Renderer turns figures into asciigraph plots.
type Renderer struct {
	height    int
	width     int
	precision uint
	color     bool
	theme     chart.Theme
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHeight sets the graph height in rows.
func WithHeight(h int) Option {
	return func(r *Renderer) { r.height = h }
}

// WithWidth sets the graph width in columns. Zero keeps one column per
// value.
func WithWidth(w int) Option {
	return func(r *Renderer) { r.width = w }
}

// WithPrecision sets the number of decimals on the axis labels.
func WithPrecision(p uint) Option {
	return func(r *Renderer) { r.precision = p }
}

// WithColor enables ANSI colours taken from the theme.
func WithColor(on bool) Option {
	return func(r *Renderer) { r.color = on }
}

// New creates a Renderer.
func New(theme chart.Theme, opts ...Option) *Renderer {
	r := &Renderer{height: 10, precision: 2, theme: theme}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supports reports whether every trace of f can be drawn.
func Supports(f chart.Figure) bool {
	for _, t := range f.Traces {
		if t.Kind != chart.Line && t.Kind != chart.Bar {
			return false
		}
	}
	return len(f.Traces) > 0
}

// Render draws every trace of f against its index. Bar traces are drawn as
// lines over their categories.
func (r *Renderer) Render(f chart.Figure) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if !Supports(f) {
		return "", errors.NewValidationError("figure", "only line and bar traces can be drawn as text", f.Title)
	}

	var (
		series [][]float64
		colors []asciigraph.AnsiColor
		names  []string
	)
	for i, t := range f.Traces {
		if t.Len() == 0 {
			continue
		}
		ys := append([]float64(nil), t.Y...)
		if len(ys) == 1 {
			ys = append(ys, ys[0])
		}
		series = append(series, ys)
		colors = append(colors, r.ansi(t.Style, i))
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	if len(series) == 0 {
		return "", errors.NewValidationError("figure", "has no data", f.Title)
	}

	caption := f.Title
	if len(names) > 1 {
		caption += " [" + strings.Join(names, ", ") + "]"
	}
	opts := []asciigraph.Option{
		asciigraph.Height(r.height),
		asciigraph.Precision(r.precision),
		asciigraph.Caption(caption),
	}
	if r.width > 0 {
		opts = append(opts, asciigraph.Width(r.width))
	}
	if r.color {
		opts = append(opts, asciigraph.SeriesColors(colors...))
	}
	return asciigraph.PlotMany(series, opts...), nil
}

// Write renders f followed by a blank line.
func (r *Renderer) Write(w io.Writer, f chart.Figure) error {
	s, err := r.Render(f)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s+"\n\n")
	return errors.Wrap(err, "failed to write graph")
}

func (r *Renderer) ansi(s chart.Style, i int) asciigraph.AnsiColor {
	c, err := colorful.Hex(s.Color)
	if err != nil {
		c = r.theme.ComponentColor(i)
	}
	return Xterm256(c)
}

// Xterm256 maps c to the nearest colour of the 6×6×6 xterm cube.
func Xterm256(c colorful.Color) asciigraph.AnsiColor {
	c = c.Clamped()
	level := func(v float64) int { return int(math.Round(v * 5)) }
	return asciigraph.AnsiColor(16 + 36*level(c.R) + 6*level(c.G) + level(c.B))
}
