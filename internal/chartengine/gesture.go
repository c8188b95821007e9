package chartengine

import "sync"

// GestureConfig switches individual gesture kinds on or off per chart.
// Scroll is accepted for forward compatibility but drives no recognizer yet.
type GestureConfig struct {
	Tap    bool
	Zoom   bool
	Scroll bool
}

// neutralScale is the pinch accumulator's resting value.
const neutralScale = 1.0

type recognizerKind uint8

const (
	recognizerNone recognizerKind = iota
	recognizerTap
	recognizerPinch
)

// Gestures is the recognizer input surface of one chart. Its methods may be
// called from any goroutine: recognized gestures become commands on the
// chart's queue and take effect only when the owning goroutine drains them,
// at which point indices are validated against the dataset as it is then.
//
// Two recognizers race per input sequence. Whichever crosses its start
// threshold first owns the stream until its own end event; the other is
// suppressed for that sequence. Hosts that can see both contact points at
// once must deliver PinchStart before TouchStart, giving pinch priority:
// two contacts outrank a single-point tap.
type Gestures struct {
	chart *Chart

	mu    sync.Mutex
	owner recognizerKind
	scale float64
}

// TouchStart begins a single-contact sequence at pixel (x, y). If the tap
// recognizer wins the race, the nearest point is selected when the command
// drains; coordinates outside the plot rectangle select nothing.
func (g *Gestures) TouchStart(x, y float64) {
	if !g.chart.cfg.Gestures.Tap {
		return
	}
	g.mu.Lock()
	if g.owner != recognizerNone {
		g.mu.Unlock()
		return
	}
	g.owner = recognizerTap
	g.mu.Unlock()

	g.chart.enqueue(tapCmd{x: x, y: y, version: g.chart.dataVersion.Load()})
}

// TouchEnd finishes a tap sequence. Selection clearing is timeout-driven,
// so ending the touch only releases recognizer ownership.
func (g *Gestures) TouchEnd() {
	g.mu.Lock()
	if g.owner == recognizerTap {
		g.owner = recognizerNone
	}
	g.mu.Unlock()
}

// PinchStart begins a two-contact sequence, suppressing tap recognition
// until PinchEnd.
func (g *Gestures) PinchStart() {
	if !g.chart.cfg.Gestures.Zoom {
		return
	}
	g.mu.Lock()
	if g.owner == recognizerNone {
		g.owner = recognizerPinch
		g.scale = neutralScale
	}
	g.mu.Unlock()
}

// PinchUpdate tracks the latest pinch scale. Nothing commits until PinchEnd.
func (g *Gestures) PinchUpdate(scale float64) {
	if scale <= 0 || !isFinite(scale) {
		return
	}
	g.mu.Lock()
	if g.owner == recognizerPinch {
		g.scale = scale
	}
	g.mu.Unlock()
}

// PinchEnd commits the tracked scale as a zoom command and resets the
// accumulator to neutral.
func (g *Gestures) PinchEnd() {
	g.mu.Lock()
	if g.owner != recognizerPinch {
		g.mu.Unlock()
		return
	}
	scale := g.scale
	g.owner = recognizerNone
	g.scale = neutralScale
	g.mu.Unlock()

	g.chart.enqueue(zoomCmd{scale: scale, version: g.chart.dataVersion.Load()})
}
