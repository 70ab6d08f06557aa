package ascii

import (
	"bytes"
	"strings"
	"testing"

	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
)

func likelihood(history ...float64) chart.Figure {
	return chart.Figure{
		Title:  "Log-Likelihood Convergence",
		Traces: []chart.Trace{chart.NewSeries("Log-likelihood", history, chart.Style{Color: "#bb86fc"})},
	}
}

func TestRender_Line(t *testing.T) {
	out, err := New(chart.Dark(), WithHeight(5), WithPrecision(0)).Render(likelihood(-900, -700, -650, -640))
	require.NoError(t, err)
	assert.Contains(t, out, "Log-Likelihood Convergence")
	assert.Contains(t, out, "-640")
	assert.Contains(t, out, "-900")
	assert.NotContains(t, out, "\x1b[")
}

func TestRender_SinglePoint(t *testing.T) {
	out, err := New(chart.Dark()).Render(likelihood(-812.5))
	require.NoError(t, err)
	assert.Contains(t, out, "Log-Likelihood Convergence")
}

func TestRender_BarsWithColor(t *testing.T) {
	f := chart.Figure{Title: "Cluster Responsibilities", Y: chart.FixedAxis("r", 0, 1)}
	f.Add(
		chart.NewBar("Cluster 1", []float64{0.1, 0.9, 0.5}, chart.Style{}),
		chart.NewBar("Cluster 2", []float64{0.9, 0.1, 0.5}, chart.Style{}),
	)
	out, err := New(chart.Dark(), WithColor(true), WithWidth(30)).Render(f)
	require.NoError(t, err)
	assert.Contains(t, out, "[Cluster 1, Cluster 2]")
	assert.Contains(t, out, "\x1b[")
}

func TestRender_Unsupported(t *testing.T) {
	f := chart.Figure{Title: "Data"}
	f.Add(chart.NewScatter("points", []linalg.Point{{X: 1, Y: 2}}, chart.Style{}))
	assert.False(t, Supports(f))
	_, err := New(chart.Dark()).Render(f)
	assert.Error(t, err)

	assert.False(t, Supports(chart.Figure{}))
	_, err = New(chart.Dark()).Render(chart.Figure{Traces: []chart.Trace{chart.NewSeries("empty", nil, chart.Style{})}})
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(chart.Light()).Write(&buf, likelihood(1, 2, 3)))
	assert.True(t, strings.HasSuffix(buf.String(), "\n\n"))
}

func TestXterm256(t *testing.T) {
	assert.Equal(t, asciigraph.AnsiColor(16), Xterm256(colorful.Color{}))
	assert.Equal(t, asciigraph.AnsiColor(231), Xterm256(colorful.Color{R: 1, G: 1, B: 1}))
	assert.Equal(t, asciigraph.AnsiColor(196), Xterm256(colorful.Color{R: 1}))
}
