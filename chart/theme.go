package chart

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// Theme is the colour scheme shared by every figure of a tutorial.
type Theme struct {
	Name       string
	Background colorful.Color
	Foreground colorful.Color
	Grid       colorful.Color
	ZeroLine   colorful.Color
	// Palette colours mixture components in order.
	Palette []colorful.Color
	// Accent colours single series such as the likelihood curve.
	Accent       colorful.Color
	AccentMarker colorful.Color
	// Highlights outline fitted components in the EM walkthrough.
	Highlights []colorful.Color
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func hexes(ss ...string) []colorful.Color {
	out := make([]colorful.Color, len(ss))
	for i, s := range ss {
		out[i] = mustHex(s)
	}
	return out
}

// Dark returns the default dark theme.
func Dark() Theme {
	return Theme{
		Name:         "dark",
		Background:   mustHex("#1e1e1e"),
		Foreground:   mustHex("#e0e0e0"),
		Grid:         mustHex("#333333"),
		ZeroLine:     mustHex("#555555"),
		Palette:      hexes("#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"),
		Accent:       mustHex("#bb86fc"),
		AccentMarker: mustHex("#03dac6"),
		Highlights:   hexes("#ba86fc", "#03dac6", "#ffba6c"),
	}
}

// Light returns a light theme with the same component palette.
func Light() Theme {
	return Theme{
		Name:         "light",
		Background:   mustHex("#ffffff"),
		Foreground:   mustHex("#212121"),
		Grid:         mustHex("#e0e0e0"),
		ZeroLine:     mustHex("#bdbdbd"),
		Palette:      hexes("#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"),
		Accent:       mustHex("#6200ee"),
		AccentMarker: mustHex("#018786"),
		Highlights:   hexes("#6200ee", "#018786", "#e65100"),
	}
}

// ThemeByName returns "dark" or "light".
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "dark", "":
		return Dark(), nil
	case "light":
		return Light(), nil
	default:
		return Theme{}, errors.NewValidationError("theme", "must be 'dark' or 'light'", name)
	}
}

// ComponentColor returns the palette colour of component i, cycling when
// there are more components than colours.
func (t Theme) ComponentColor(i int) colorful.Color {
	if len(t.Palette) == 0 {
		return t.Foreground
	}
	return t.Palette[i%len(t.Palette)]
}

// HighlightHex returns the walkthrough colour of component i.
func (t Theme) HighlightHex(i int) string {
	if len(t.Highlights) == 0 {
		return t.ComponentHex(i)
	}
	return t.Highlights[i%len(t.Highlights)].Hex()
}

// ComponentHex returns ComponentColor(i) as a hex string.
func (t Theme) ComponentHex(i int) string { return t.ComponentColor(i).Hex() }

// Colorscale maps [0, 1] onto colours interpolated in CIE-L*a*b* between
// evenly spaced stops.
type Colorscale []colorful.Color

// Colour scales used by the tutorial figures.
var (
	Viridis = Colorscale(hexes("#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"))
	Plasma = Colorscale(hexes("#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
		"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"))
)

// Colorscale names.
const (
	ScaleViridis = "viridis"
	ScalePlasma  = "plasma"
)

// ColorscaleByName returns a named scale. An empty name selects Viridis.
func ColorscaleByName(name string) (Colorscale, error) {
	switch strings.ToLower(name) {
	case ScaleViridis, "":
		return Viridis, nil
	case ScalePlasma:
		return Plasma, nil
	default:
		return nil, errors.NewValidationError("colorscale", "must be 'viridis' or 'plasma'", name)
	}
}

// At returns the colour at position v, clamped to [0, 1].
func (c Colorscale) At(v float64) colorful.Color {
	switch len(c) {
	case 0:
		return colorful.Color{}
	case 1:
		return c[0]
	}
	if math.IsNaN(v) || v <= 0 {
		return c[0]
	}
	if v >= 1 {
		return c[len(c)-1]
	}
	pos := v * float64(len(c)-1)
	i := int(pos)
	return c[i].BlendLab(c[i+1], pos-float64(i)).Clamped()
}

// Category returns the colour of category i out of n, spreading the
// categories over the whole scale.
func (c Colorscale) Category(i, n int) colorful.Color {
	if n <= 1 {
		return c.At(0)
	}
	return c.At(float64(i) / float64(n-1))
}

// Normalize maps v from [lo, hi] to [0, 1]. A degenerate range maps to 0.
func Normalize(v, lo, hi float64) float64 {
	if !(hi > lo) {
		return 0
	}
	return (v - lo) / (hi - lo)
}
