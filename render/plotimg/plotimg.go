// Package plotimg draws chart figures as static images with gonum/plot.
//
// Scatter, line, bar and heatmap traces are supported. Categorical scatter
// traces colour each point through the trace colour scale and stacked
// figures stack their bar traces.
package plotimg

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
)

// Default canvas size.
const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 12 * vg.Centimeter
)

const (
	barWidth      = 18 // points
	paletteStops  = 64
	defaultMarker = 6
)

var formats = map[string]bool{
	"png": true, "svg": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// Renderer turns figures into gonum plots styled with one theme.
type Renderer struct {
	theme  chart.Theme
	width  vg.Length
	height vg.Length
	logger log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the canvas size.
func WithSize(width, height vg.Length) Option {
	return func(r *Renderer) {
		r.width = width
		r.height = height
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger log.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a Renderer.
func New(theme chart.Theme, opts ...Option) *Renderer {
	r := &Renderer{
		theme:  theme,
		width:  DefaultWidth,
		height: DefaultHeight,
		logger: log.GetLoggerWithName("plotimg"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plot builds the gonum plot of f.
func (r *Renderer) Plot(f chart.Figure) (*plot.Plot, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.X.Title
	p.Y.Label.Text = f.Y.Title
	r.applyTheme(p)

	var below *plotter.BarChart
	bars := 0
	for i, t := range f.Traces {
		if t.Kind != chart.Heatmap && t.Len() == 0 {
			continue
		}
		var (
			thumbs []plot.Thumbnailer
			err    error
		)
		switch t.Kind {
		case chart.Scatter:
			thumbs, err = r.scatter(t, i)
		case chart.Line:
			thumbs, err = r.line(t, i)
		case chart.Bar:
			var bc *plotter.BarChart
			bc, err = r.bar(t, i)
			if err == nil {
				if f.Stacked && below != nil {
					bc.StackOn(below)
				}
				if !f.Stacked {
					bc.Offset = vg.Points(barWidth) * vg.Length(bars)
				}
				below = bc
				bars++
				p.Add(bc)
				thumbs = []plot.Thumbnailer{bc}
			}
		case chart.Heatmap:
			err = r.heatmap(p, t)
		default:
			err = errors.NewValidationError("kind", "unsupported trace kind", t.Kind.String())
		}
		if err != nil {
			return nil, errors.Wrapf(err, "trace %d (%s)", i, t.Name)
		}
		for _, th := range thumbs {
			if pl, ok := th.(plot.Plotter); ok && t.Kind != chart.Bar {
				p.Add(pl)
			}
		}
		if f.ShowLegend && t.Name != "" && len(thumbs) > 0 {
			p.Legend.Add(t.Name, thumbs...)
		}
	}

	setAxis(&p.X, f.X)
	setAxis(&p.Y, f.Y)
	p.Legend.Top = true
	return p, nil
}

func (r *Renderer) applyTheme(p *plot.Plot) {
	fg := r.theme.Foreground
	p.BackgroundColor = r.theme.Background
	p.Title.TextStyle.Color = fg
	p.Legend.TextStyle.Color = fg
	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Color = fg
		a.Label.TextStyle.Color = fg
		a.Tick.Label.Color = fg
		a.Tick.Color = fg
	}
	g := plotter.NewGrid()
	g.Vertical.Color = r.theme.Grid
	g.Horizontal.Color = r.theme.Grid
	p.Add(g)
}

func setAxis(a *plot.Axis, spec chart.Axis) {
	if lo, hi, ok := spec.Range(); ok {
		a.Min, a.Max = lo, hi
	}
	if len(spec.Ticks) > 0 {
		ticks := make([]plot.Tick, len(spec.Ticks))
		for i, v := range spec.Ticks {
			ticks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'g', -1, 64)}
		}
		a.Tick.Marker = plot.ConstantTicks(ticks)
	}
}

func xys(t chart.Trace) plotter.XYs {
	pts := make(plotter.XYs, t.Len())
	for i := range pts {
		pts[i].X, pts[i].Y = t.X[i], t.Y[i]
	}
	return pts
}

func (r *Renderer) scatter(t chart.Trace, i int) ([]plot.Thumbnailer, error) {
	s, err := plotter.NewScatter(xys(t))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle = r.glyph(t.Style, r.traceColor(t.Style, i))
	if t.Categories != nil {
		colors, err := categoryColors(t)
		if err != nil {
			return nil, err
		}
		base := s.GlyphStyle
		s.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			g := base
			g.Color = colors[j]
			return g
		}
	}
	return []plot.Thumbnailer{s}, nil
}

func (r *Renderer) line(t chart.Trace, i int) ([]plot.Thumbnailer, error) {
	l, err := plotter.NewLine(xys(t))
	if err != nil {
		return nil, err
	}
	l.LineStyle = r.lineStyle(t.Style, i)
	if t.Style.Marker == "" {
		return []plot.Thumbnailer{l}, nil
	}
	s, err := plotter.NewScatter(xys(t))
	if err != nil {
		return nil, err
	}
	mc := r.traceColor(t.Style, i)
	if c, err := colorful.Hex(t.Style.MarkerColor); err == nil {
		mc = withOpacity(c, t.Style.Opacity)
	}
	s.GlyphStyle = r.glyph(t.Style, mc)
	return []plot.Thumbnailer{l, s}, nil
}

func (r *Renderer) bar(t chart.Trace, i int) (*plotter.BarChart, error) {
	bc, err := plotter.NewBarChart(plotter.Values(t.Y), vg.Points(barWidth))
	if err != nil {
		return nil, err
	}
	bc.Color = r.traceColor(t.Style, i)
	bc.LineStyle.Width = 0
	if len(t.X) > 0 {
		bc.XMin = t.X[0]
	}
	return bc, nil
}

func (r *Renderer) heatmap(p *plot.Plot, t chart.Trace) error {
	if len(t.Z) == 0 || len(t.X) == 0 {
		return errors.NewValidationError("z", "heatmap needs a non-empty grid", len(t.Z))
	}
	scale, err := chart.ColorscaleByName(t.Style.Colorscale)
	if err != nil {
		return err
	}
	g := gridXYZ{t}
	h := plotter.NewHeatMap(g, newPalette(scale, t.Style.Opacity))
	h.Min, h.Max = zRange(t.Z)
	p.Add(h)
	return nil
}

func (r *Renderer) traceColor(s chart.Style, i int) color.Color {
	c, err := colorful.Hex(s.Color)
	if err != nil {
		c = r.theme.ComponentColor(i)
	}
	return withOpacity(c, s.Opacity)
}

func (r *Renderer) glyph(s chart.Style, c color.Color) draw.GlyphStyle {
	size := s.Size
	if size <= 0 {
		size = defaultMarker
	}
	g := draw.GlyphStyle{Color: c, Radius: vg.Points(size / 2), Shape: draw.CircleGlyph{}}
	if s.Marker == chart.MarkerCross {
		g.Shape = draw.CrossGlyph{}
	}
	return g
}

func (r *Renderer) lineStyle(s chart.Style, i int) draw.LineStyle {
	width := s.Width
	if width <= 0 {
		width = 1
	}
	ls := draw.LineStyle{Color: r.traceColor(s, i), Width: vg.Points(width)}
	if s.Dash {
		ls.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	}
	return ls
}

// withOpacity applies an opacity in (0, 1]; zero means opaque.
func withOpacity(c colorful.Color, opacity float64) color.Color {
	r, g, b := c.Clamped().RGB255()
	a := uint8(255)
	if opacity > 0 && opacity < 1 {
		a = uint8(opacity*255 + 0.5)
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func categoryColors(t chart.Trace) ([]color.Color, error) {
	scale, err := chart.ColorscaleByName(t.Style.Colorscale)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, c := range t.Categories {
		if c+1 > n {
			n = c + 1
		}
	}
	colors := make([]color.Color, len(t.Categories))
	for i, c := range t.Categories {
		colors[i] = withOpacity(scale.Category(c, n), t.Style.Opacity)
	}
	return colors, nil
}

// gridXYZ adapts a heatmap trace to plotter.GridXYZ. Columns run along X and
// rows along Y.
type gridXYZ struct {
	t chart.Trace
}

func (g gridXYZ) Dims() (c, r int)   { return len(g.t.X), len(g.t.Y) }
func (g gridXYZ) Z(c, r int) float64 { return g.t.Z[r][c] }
func (g gridXYZ) X(c int) float64    { return g.t.X[c] }
func (g gridXYZ) Y(r int) float64    { return g.t.Y[r] }

type scalePalette []color.Color

func (p scalePalette) Colors() []color.Color { return p }

func newPalette(scale chart.Colorscale, opacity float64) scalePalette {
	p := make(scalePalette, paletteStops)
	for i := range p {
		p[i] = withOpacity(scale.At(float64(i)/float64(paletteStops-1)), opacity)
	}
	return p
}

// zRange returns the extent of z, widened when constant.
func zRange(z [][]float64) (lo, hi float64) {
	first := true
	for _, row := range z {
		for _, v := range row {
			if first || v < lo {
				lo = v
			}
			if first || v > hi {
				hi = v
			}
			first = false
		}
	}
	if !(hi > lo) {
		hi = lo + 1
	}
	return lo, hi
}

func checkFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if !formats[f] {
		return "", errors.NewValidationError("format", "unsupported image format", format)
	}
	return f, nil
}

// WriteTo renders f in format (png, svg, pdf, ...) to w.
func (r *Renderer) WriteTo(w io.Writer, f chart.Figure, format string) (int64, error) {
	format, err := checkFormat(format)
	if err != nil {
		return 0, err
	}
	p, err := r.Plot(f)
	if err != nil {
		return 0, err
	}
	wt, err := p.WriterTo(r.width, r.height, format)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to encode %s", format)
	}
	n, err := wt.WriteTo(w)
	if err != nil {
		return n, errors.Wrap(err, "failed to write image")
	}
	r.logger.Debug("figure rendered", log.OperationKey, log.OperationRender, log.FormatKey, format, "figure", f.Title)
	return n, nil
}

// Save renders f to path. The extension selects the format.
func (r *Renderer) Save(f chart.Figure, path string) error {
	format, err := checkFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if _, err := r.WriteTo(out, f, format); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	r.logger.Info("figure saved", log.PathKey, path, log.FormatKey, format)
	return nil
}

// SaveAnimation writes one image per frame into dir as <frame name>.<format>
// and returns the paths in frame order.
func (r *Renderer) SaveAnimation(a chart.Animation, dir, format string) ([]string, error) {
	format, err := checkFormat(format)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(a.Frames))
	for i, fr := range a.Frames {
		name := fr.Name
		if name == "" {
			name = fmt.Sprintf("frame-%d", i)
		}
		fig := fr.Figure
		if fr.Label != "" {
			fig.Title = fig.Title + " (" + fr.Label + ")"
		}
		path := filepath.Join(dir, name+"."+format)
		if err := r.Save(fig, path); err != nil {
			return paths, errors.Wrapf(err, "frame %s", name)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
