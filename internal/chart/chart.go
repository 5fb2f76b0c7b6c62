// Package chart draws the bar chart that accompanies an HTML coverage
// report: one horizontal stacked bar per category with the series
// "Implemented", the browser family (names not yet implemented) and
// "Should not be implemented".
package chart

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/fogleman/gg"

	"github.com/unbound-force/parity/internal/browser"
	"github.com/unbound-force/parity/internal/score"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1200
	DefaultHeight = 2400
)

// Series colors, matching the HTML report.
const (
	implementedColor = "#2ca02c"
	missingColor     = "#1f5fd6"
	erroneousColor   = "#d62728"
	gridColor        = "#dddddd"
	textColor        = "#222222"
)

// Layout in pixels.
const (
	margin       = 12.0
	titleHeight  = 28.0
	legendHeight = 24.0
	axisHeight   = 20.0
	labelGap     = 8.0
	barFill      = 0.75
	gridLines    = 5
)

// ErroneousSeries is the caption of the third series.
const ErroneousSeries = "Should not be implemented"

// Options sets the fixed canvas size.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns the default canvas size.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight}
}

// Bar is the data of one category.
type Bar struct {
	Category    string
	Implemented int
	Real        int
	Erroneous   int
}

// Missing is the part of Real that is not implemented.
func (b Bar) Missing() int {
	return b.Real - b.Implemented
}

// Total is the stacked length: real names plus erroneous names.
func (b Bar) Total() int {
	return b.Real + b.Erroneous
}

// Bars extracts the chart data from a run, sorted descending by
// Total, ties by category name.
func Bars(run score.Run) []Bar {
	bars := make([]Bar, 0, len(run.Rows))
	for _, r := range run.Rows {
		bars = append(bars, Bar{
			Category:    r.Category,
			Implemented: r.Implemented,
			Real:        r.Real,
			Erroneous:   len(r.Erroneous),
		})
	}
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].Total() != bars[j].Total() {
			return bars[i].Total() > bars[j].Total()
		}
		return bars[i].Category < bars[j].Category
	})
	return bars
}

// Render draws bars as a PNG of the configured size and writes it to w.
func Render(w io.Writer, family browser.Family, bars []Bar, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", opts.Width, opts.Height)
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	width := float64(opts.Width)
	height := float64(opts.Height)

	dc.SetHexColor(textColor)
	dc.DrawStringAnchored(family.DisplayName()+" properties", width/2, margin+titleHeight/2, 0.5, 0.5)
	drawLegend(dc, family, width/2, margin+titleHeight+legendHeight/2)

	if len(bars) == 0 {
		dc.DrawStringAnchored("No categories", width/2, height/2, 0.5, 0.5)
		return dc.EncodePNG(w)
	}

	labelWidth := 0.0
	for _, b := range bars {
		if lw, _ := dc.MeasureString(b.Category); lw > labelWidth {
			labelWidth = lw
		}
	}
	labelWidth = math.Min(labelWidth, width/3)

	left := margin + labelWidth + labelGap
	right := width - margin
	top := margin + titleHeight + legendHeight
	bottom := height - margin - axisHeight
	if right <= left || bottom <= top {
		return fmt.Errorf("chart size %dx%d too small", opts.Width, opts.Height)
	}

	maxTotal := 1
	for _, b := range bars {
		if b.Total() > maxTotal {
			maxTotal = b.Total()
		}
	}
	scale := (right - left) / float64(maxTotal)

	drawGrid(dc, left, right, top, bottom, maxTotal)

	slot := (bottom - top) / float64(len(bars))
	thickness := math.Max(slot*barFill, 1)
	for i, b := range bars {
		y := top + float64(i)*slot + (slot-thickness)/2
		x := left
		for _, seg := range []struct {
			value int
			color string
		}{
			{b.Implemented, implementedColor},
			{b.Missing(), missingColor},
			{b.Erroneous, erroneousColor},
		} {
			if seg.value <= 0 {
				continue
			}
			length := float64(seg.value) * scale
			dc.SetHexColor(seg.color)
			dc.DrawRectangle(x, y, length, thickness)
			dc.Fill()
			x += length
		}

		if slot >= 6 {
			dc.SetHexColor(textColor)
			dc.DrawStringAnchored(b.Category, left-labelGap, y+thickness/2, 1, 0.35)
		}
	}

	return dc.EncodePNG(w)
}

func drawLegend(dc *gg.Context, family browser.Family, cx, cy float64) {
	entries := []struct {
		label string
		color string
	}{
		{"Implemented", implementedColor},
		{family.DisplayName(), missingColor},
		{ErroneousSeries, erroneousColor},
	}

	const swatch = 10.0
	const spacing = 24.0
	total := 0.0
	for _, e := range entries {
		lw, _ := dc.MeasureString(e.label)
		total += swatch + 4 + lw + spacing
	}
	x := cx - (total-spacing)/2
	for _, e := range entries {
		dc.SetHexColor(e.color)
		dc.DrawRectangle(x, cy-swatch/2, swatch, swatch)
		dc.Fill()
		x += swatch + 4

		dc.SetHexColor(textColor)
		dc.DrawStringAnchored(e.label, x, cy, 0, 0.35)
		lw, _ := dc.MeasureString(e.label)
		x += lw + spacing
	}
}

func drawGrid(dc *gg.Context, left, right, top, bottom float64, maxTotal int) {
	step := int(math.Ceil(float64(maxTotal) / gridLines))
	if step < 1 {
		step = 1
	}
	scale := (right - left) / float64(maxTotal)

	dc.SetLineWidth(1)
	for v := 0; v <= maxTotal; v += step {
		x := left + float64(v)*scale
		dc.SetHexColor(gridColor)
		dc.DrawLine(x, top, x, bottom)
		dc.Stroke()

		dc.SetHexColor(textColor)
		dc.DrawStringAnchored(fmt.Sprintf("%d", v), x, bottom+axisHeight/2, 0.5, 0.5)
	}
}
