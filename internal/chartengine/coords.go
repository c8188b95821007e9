// Package chartengine implements the interactive time-series visualization
// engine behind every indicator panel: windowing and zoom over a full
// dataset, value-to-pixel coordinate mapping, crosshair selection with an
// auto-clear timeout, tap/pinch gesture recognition, and a pure rendering
// contract that turns a frame snapshot into drawing primitives.
package chartengine

import "math"

// Margin is the pixel inset reserved for axes and labels on each side of the
// plot area.
type Margin struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// ValueRange is the padded min/max of the values visible in the current
// window. Max is always strictly greater than Min.
type ValueRange struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (r ValueRange) Span() float64 { return r.Max - r.Min }

// Mapper converts visible indices and values to pixel coordinates. It is a
// plain value built once per frame from the surface size, margins, value
// range and visible window length.
type Mapper struct {
	width   float64
	height  float64
	margin  Margin
	rng     ValueRange
	visible int
}

// NewMapper builds a mapper for a window of visibleLength points on a
// width x height surface. rng must have a positive span; ComputeRange
// guarantees that.
func NewMapper(width, height float64, margin Margin, rng ValueRange, visibleLength int) Mapper {
	return Mapper{
		width:   width,
		height:  height,
		margin:  margin,
		rng:     rng,
		visible: visibleLength,
	}
}

// PlotWidth returns the drawable width inside the margins.
func (m Mapper) PlotWidth() float64 { return m.width - m.margin.Left - m.margin.Right }

// PlotHeight returns the drawable height inside the margins.
func (m Mapper) PlotHeight() float64 { return m.height - m.margin.Top - m.margin.Bottom }

// ToX maps a visible index to a pixel X. Index 0 lands on the left plot edge
// and index visibleLength-1 on the right plot edge.
func (m Mapper) ToX(i int) float64 {
	den := float64(m.visible - 1)
	if den < 1 {
		den = 1
	}
	return m.margin.Left + (float64(i)/den)*m.PlotWidth()
}

// ToY maps a value to a pixel Y. Larger values map to smaller Y, so the
// result decreases monotonically in v.
func (m Mapper) ToY(v float64) float64 {
	return m.margin.Top + m.PlotHeight() - ((v-m.rng.Min)/m.rng.Span())*m.PlotHeight()
}

// IndexAt inverts ToX for hit testing: the nearest visible index for pixel x,
// clamped to the window. ok is false when x falls outside the plot's
// horizontal extent or the window is empty.
func (m Mapper) IndexAt(x float64) (index int, ok bool) {
	if m.visible <= 0 {
		return 0, false
	}
	if x < m.margin.Left || x > m.width-m.margin.Right {
		return 0, false
	}
	plotWidth := m.PlotWidth()
	if plotWidth <= 0 {
		return 0, false
	}
	index = int(math.Round((x - m.margin.Left) / plotWidth * float64(m.visible-1)))
	if index < 0 {
		index = 0
	}
	if index > m.visible-1 {
		index = m.visible - 1
	}
	return index, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
