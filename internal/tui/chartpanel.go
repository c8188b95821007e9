package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/canvas/graph"
	"github.com/charmbracelet/lipgloss"

	"github.com/quotelab/tickmark/internal/chartengine"
	"github.com/quotelab/tickmark/internal/indicator"
	"github.com/quotelab/tickmark/internal/marketdata"
	"github.com/quotelab/tickmark/internal/observability"
	"github.com/quotelab/tickmark/internal/series"
	"github.com/quotelab/tickmark/internal/waiting"
)

// Braille cells pack 2x4 dots, so the engine draws on a surface that many
// times denser than the terminal grid.
const (
	brailleXDensity = 2
	brailleYDensity = 4
)

// ChartPanel hosts one engine chart for one symbol: it owns the chart, keeps
// the candle history and sentiment reading, and rasterizes frame primitives
// onto an ntcharts canvas. Not goroutine safe; the model's update loop owns
// it, which also satisfies the engine's single-goroutine contract.
type ChartPanel struct {
	symbol string
	chart  *chartengine.Chart
	logger *observability.CoreLogger

	style RenderStyle
	view  PanelView

	width, height int // inner cell size granted by the grid
	plotW, plotH  int // chart body in cells, excluding gutter and axis row

	focused bool
	body    string

	candles   []marketdata.Candle
	ema       []float64
	lastPrice float64
	stale     waiting.Stopwatch
	sentiment indicator.Summary
	scored    bool
	selText   string
}

// NewChartPanel builds a panel around a fresh engine chart. engineCfg's
// surface and selection callback are managed by the panel; the remaining
// fields (zoom bounds, visible count, clear timeout, gestures) pass through.
func NewChartPanel(
	symbol string,
	engineCfg chartengine.Config,
	style RenderStyle,
	staleAfter time.Duration,
	logger *observability.CoreLogger,
) (*ChartPanel, error) {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	p := &ChartPanel{
		symbol: symbol,
		style:  style,
		view:   ViewPrice,
		logger: logger,
		stale:  waiting.NewStopwatch(staleAfter),
	}

	engineCfg.OnSelectionChange = func(pt *series.Point, _ int) {
		p.selText = formatSelection(pt)
	}
	// Engine surfaces are in braille dots; give new charts a nominal size
	// until the first layout pass arrives.
	if engineCfg.Width <= 0 {
		engineCfg.Width = MinChartWidth * brailleXDensity
	}
	if engineCfg.Height <= 0 {
		engineCfg.Height = MinChartHeight * brailleYDensity
	}

	chart, err := chartengine.New(engineCfg)
	if err != nil {
		return nil, err
	}
	p.chart = chart
	p.setSize(MinChartWidth, MinChartHeight)
	return p, nil
}

// Symbol returns the symbol this panel charts.
func (p *ChartPanel) Symbol() string { return p.symbol }

// Chart exposes the underlying engine chart.
func (p *ChartPanel) Chart() *chartengine.Chart { return p.chart }

// Focused reports whether the panel holds focus.
func (p *ChartPanel) Focused() bool { return p.focused }

// SetFocused updates the focus flag.
func (p *ChartPanel) SetFocused(focused bool) { p.focused = focused }

// Style returns the active render style.
func (p *ChartPanel) Style() RenderStyle { return p.style }

// SetStyle switches the render style and repaints. Only the price view
// follows the style cycle; derived views keep their canonical form.
func (p *ChartPanel) SetStyle(style RenderStyle) {
	if style == p.style {
		return
	}
	p.style = style
	p.Draw()
}

// ViewMode returns the charted series kind.
func (p *ChartPanel) ViewMode() PanelView { return p.view }

// SetViewMode switches the charted series. The engine window resets, since
// derived series can differ in length from the candle history.
func (p *ChartPanel) SetViewMode(view PanelView) {
	if view == p.view {
		return
	}
	p.view = view
	p.applyView()
}

// applyView feeds the active view's dataset to the engine and repaints.
func (p *ChartPanel) applyView() {
	p.chart.SetData(viewDataset(p.view, p.candles))
	p.Draw()
}

// LastPrice returns the most recent price, live tick or last close.
func (p *ChartPanel) LastPrice() float64 { return p.lastPrice }

// Stale reports whether no tick arrived within the staleness window.
func (p *ChartPanel) Stale() bool { return p.stale.IsDone() }

// Sentiment returns the composite reading and whether one could be scored.
func (p *ChartPanel) Sentiment() (indicator.Summary, bool) {
	return p.sentiment, p.scored
}

// SelectionText returns the crosshair readout, empty when nothing is
// selected.
func (p *ChartPanel) SelectionText() string { return p.selText }

// SetHistory replaces the candle dataset. The engine resets its window, any
// selection drops, and the overlay and sentiment composite are rescored.
func (p *ChartPanel) SetHistory(candles []marketdata.Candle) {
	p.candles = candles
	if len(candles) > 0 {
		p.lastPrice = candles[len(candles)-1].Close
	}
	closes := marketdata.Closes(candles)

	p.ema = nil
	if ema, err := indicator.EMA(closes, emaOverlayPeriod); err == nil {
		p.ema = ema
	}

	p.scored = false
	summary, err := indicator.Sentiment(closes, indicator.DefaultSentimentConfig())
	if err != nil {
		p.logger.Debug("tui: sentiment unavailable", "symbol", p.symbol, "error", err)
	} else {
		p.sentiment = summary
		p.scored = true
	}

	p.applyView()
}

// ApplyTick records a live price and restarts the staleness countdown. The
// chart body keeps showing history; the title and status bar carry the live
// quote.
func (p *ChartPanel) ApplyTick(t marketdata.Tick) {
	if t.Price > 0 {
		p.lastPrice = t.Price
	}
	p.stale.Reset()
}

// Resize grants the panel a new inner cell size and repaints.
func (p *ChartPanel) Resize(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	p.setSize(width, height)
	p.Draw()
}

func (p *ChartPanel) setSize(width, height int) {
	p.width = width
	p.height = height
	p.plotW = max(width-PriceAxisWidth, 8)
	p.plotH = max(height-1, 2)
	p.chart.Resize(
		float64(p.plotW*brailleXDensity),
		float64(p.plotH*brailleYDensity),
	)
}

// DrainAndDraw applies queued gesture and timer commands, then repaints.
func (p *ChartPanel) DrainAndDraw() {
	p.chart.Drain()
	p.Draw()
}

// HandleClick forwards a click at panel-local cell coordinates to the tap
// recognizer. Returns false for clicks on the gutter or axis row.
func (p *ChartPanel) HandleClick(localX, localY int) bool {
	px := localX - PriceAxisWidth
	if px < 0 || px >= p.plotW || localY < 0 || localY >= p.plotH {
		return false
	}
	// Aim at the center of the clicked cell in dot coordinates.
	x := float64(px*brailleXDensity) + float64(brailleXDensity)/2
	y := float64(localY*brailleYDensity) + float64(brailleYDensity)/2
	g := p.chart.Gestures()
	g.TouchStart(x, y)
	g.TouchEnd()
	return true
}

// HandleWheel synthesizes a pinch from one wheel notch: up zooms in, down
// zooms out.
func (p *ChartPanel) HandleWheel(up bool) {
	g := p.chart.Gestures()
	g.PinchStart()
	if up {
		g.PinchUpdate(1.25)
	} else {
		g.PinchUpdate(0.8)
	}
	g.PinchEnd()
}

// ResetView restores the default window and repaints.
func (p *ChartPanel) ResetView() {
	p.chart.ResetView()
	p.Draw()
}

// TitleLine is the cell header: symbol, view suffix for derived series,
// latest price, sentiment glyph.
func (p *ChartPanel) TitleLine() string {
	parts := []string{p.symbol}
	if p.view != ViewPrice {
		parts = append(parts, string(p.view))
	}
	if p.lastPrice > 0 {
		parts = append(parts, formatPrice(p.lastPrice))
	}
	if p.scored {
		if glyph, ok := tierGlyphs[p.sentiment.Tier]; ok {
			parts = append(parts, glyph)
		}
	}
	return strings.Join(parts, " ")
}

// Close releases the engine chart's timer.
func (p *ChartPanel) Close() {
	p.chart.Close()
}

// View returns the cached panel body, painting it on first use.
func (p *ChartPanel) View() string {
	if p.body == "" {
		p.Draw()
	}
	return p.body
}

// Draw repaints the panel body from the current engine state.
func (p *ChartPanel) Draw() {
	p.body = p.render()
}

func (p *ChartPanel) render() string {
	ctx := p.chart.Context()
	if ctx == nil {
		msg := "waiting for data"
		if len(p.candles) > 0 {
			// History arrived but is shorter than the view's warm-up.
			msg = "not enough history"
		}
		return lipgloss.Place(
			p.width, p.height,
			lipgloss.Center, lipgloss.Center,
			labelStyle.Render(msg),
		)
	}

	prims := p.rendererFor(ctx).Render(ctx)
	prims = append(prims, p.emaOverlay(ctx)...)

	c := canvas.New(p.plotW, p.plotH)
	ras := newRasterizer(p.plotW, p.plotH)
	ras.add(prims)
	ras.paint(&c)

	plotLines := strings.Split(c.View(), "\n")
	gutter := p.renderGutter(ctx)

	rows := make([]string, 0, p.plotH+1)
	for i := 0; i < p.plotH; i++ {
		line := ""
		if i < len(plotLines) {
			line = plotLines[i]
		}
		rows = append(rows, gutter[i]+line)
	}
	rows = append(rows, p.renderBottomRow(ctx))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderGutter builds the left price axis: labels at the top, middle and
// bottom of the padded range, an axis rule elsewhere.
func (p *ChartPanel) renderGutter(ctx *chartengine.Context) []string {
	labelW := PriceAxisWidth - 1

	labelAt := map[int]float64{
		0:           ctx.Range.Max,
		p.plotH - 1: ctx.Range.Min,
	}
	if p.plotH >= 5 {
		labelAt[p.plotH/2] = ctx.Range.Min + ctx.Range.Span()/2
	}

	gutter := make([]string, p.plotH)
	for i := range gutter {
		if v, ok := labelAt[i]; ok {
			lbl := formatPrice(v)
			if len(lbl) > labelW {
				lbl = lbl[:labelW]
			}
			gutter[i] = labelStyle.Render(fmt.Sprintf("%*s", labelW, lbl)) + axisStyle.Render("┤")
		} else {
			gutter[i] = strings.Repeat(" ", labelW) + axisStyle.Render("│")
		}
	}
	return gutter
}

// renderBottomRow shows the time axis, or the crosshair readout while a
// selection is active.
func (p *ChartPanel) renderBottomRow(ctx *chartengine.Context) string {
	pad := strings.Repeat(" ", PriceAxisWidth-1)

	if p.selText != "" && !ctx.Selection.None() {
		return pad + axisStyle.Render("└") + selectionStyle.Render(TruncateTitle(" "+p.selText, p.plotW))
	}

	n := len(ctx.Points)
	first := ctx.Points[0].Time
	last := ctx.Points[n-1].Time
	span := last.Sub(first)

	left := timeLabel(first, span)
	right := timeLabel(last, span)

	dashes := p.plotW - len(left) - len(right) - 2
	if dashes < 0 {
		// Not enough room for both ends; keep the most recent one.
		return pad + axisStyle.Render("└") + labelStyle.Render(TruncateTitle(right, p.plotW))
	}
	return pad + axisStyle.Render("└") +
		labelStyle.Render(left) +
		axisStyle.Render(" "+strings.Repeat("─", dashes)+" ") +
		labelStyle.Render(right)
}

// rasterizer replays engine primitives onto braille grids (strokes) and a
// block-rune pass (filled rectangles). One grid per palette slot keeps the
// per-color styling that DrawBraillePatterns applies grid-wide.
type rasterizer struct {
	plotW, plotH int
	pxW, pxH     float64

	grids map[chartengine.Color]*graph.BrailleGrid
	rects []chartengine.Rect
	pen   chartengine.XY
}

// brailleLayers is the paint order; later layers win overlapping cells.
var brailleLayers = []chartengine.Color{
	chartengine.ColorMuted,
	chartengine.ColorNeutral,
	chartengine.ColorAccent,
	chartengine.ColorUp,
	chartengine.ColorDown,
}

func newRasterizer(plotW, plotH int) *rasterizer {
	return &rasterizer{
		plotW: plotW,
		plotH: plotH,
		pxW:   float64(plotW * brailleXDensity),
		pxH:   float64(plotH * brailleYDensity),
		grids: make(map[chartengine.Color]*graph.BrailleGrid),
	}
}

func (r *rasterizer) add(prims []chartengine.Primitive) {
	for _, prim := range prims {
		switch v := prim.(type) {
		case chartengine.MoveTo:
			r.pen = chartengine.XY{X: v.X, Y: v.Y}
		case chartengine.LineTo:
			to := chartengine.XY{X: v.X, Y: v.Y}
			r.stroke(v.Color, r.pen, to)
			r.pen = to
		case chartengine.Rect:
			if v.Fill {
				r.rects = append(r.rects, v)
			} else {
				r.strokeRect(v)
			}
		case chartengine.Path:
			r.addPath(v)
		}
	}
}

func (r *rasterizer) addPath(path chartengine.Path) {
	pts := path.Points
	if len(pts) < 2 {
		return
	}
	if path.Fill && path.Closed {
		r.fillPolygon(path.Color, pts)
		return
	}
	for i := 0; i < len(pts)-1; i++ {
		r.stroke(path.Color, pts[i], pts[i+1])
	}
	if path.Closed {
		r.stroke(path.Color, pts[len(pts)-1], pts[0])
	}
}

func (r *rasterizer) grid(color chartengine.Color) *graph.BrailleGrid {
	g, ok := r.grids[color]
	if !ok {
		g = graph.NewBrailleGrid(r.plotW, r.plotH, 0, r.pxW, 0, r.pxH)
		r.grids[color] = g
	}
	return g
}

// gridPoint clamps an engine point to the surface and flips Y: the engine's
// Y axis grows downward, the braille grid's upward.
func (r *rasterizer) gridPoint(g *graph.BrailleGrid, pt chartengine.XY) canvas.Point {
	x := math.Min(math.Max(pt.X, 0), r.pxW)
	y := math.Min(math.Max(pt.Y, 0), r.pxH)
	return g.GridPoint(canvas.Float64Point{X: x, Y: r.pxH - y})
}

func (r *rasterizer) stroke(color chartengine.Color, from, to chartengine.XY) {
	g := r.grid(color)
	gp1 := r.gridPoint(g, from)
	gp2 := r.gridPoint(g, to)
	for _, pt := range graph.GetLinePoints(gp1, gp2) {
		g.Set(pt)
	}
}

func (r *rasterizer) strokeRect(rc chartengine.Rect) {
	tl := chartengine.XY{X: rc.X, Y: rc.Y}
	tr := chartengine.XY{X: rc.X + rc.W, Y: rc.Y}
	br := chartengine.XY{X: rc.X + rc.W, Y: rc.Y + rc.H}
	bl := chartengine.XY{X: rc.X, Y: rc.Y + rc.H}
	r.stroke(rc.Color, tl, tr)
	r.stroke(rc.Color, tr, br)
	r.stroke(rc.Color, br, bl)
	r.stroke(rc.Color, bl, tl)
}

// fillPolygon rasterizes a filled polygon with an even-odd scanline pass
// over dot rows.
//
// See https://en.wikipedia.org/wiki/Even%E2%80%93odd_rule.
func (r *rasterizer) fillPolygon(color chartengine.Color, pts []chartengine.XY) {
	minY, maxY := pts[0].Y, pts[0].Y
	for _, pt := range pts[1:] {
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}
	minY = math.Max(minY, 0)
	maxY = math.Min(maxY, r.pxH)

	for y := math.Floor(minY) + 0.5; y <= maxY; y++ {
		var xs []float64
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			if (a.Y <= y) == (b.Y <= y) {
				continue
			}
			t := (y - a.Y) / (b.Y - a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			r.stroke(color, chartengine.XY{X: xs[i], Y: y}, chartengine.XY{X: xs[i+1], Y: y})
		}
	}
}

// paint draws the braille layers, then the block rectangles on top so candle
// bodies overstrike their wicks.
func (r *rasterizer) paint(c *canvas.Model) {
	for _, color := range brailleLayers {
		g, ok := r.grids[color]
		if !ok {
			continue
		}
		graph.DrawBraillePatterns(c, canvas.Point{X: 0, Y: 0}, g.BraillePatterns(), inkFor(color))
	}
	for _, rc := range r.rects {
		r.paintRect(c, rc)
	}
}

// paintRect draws a filled rectangle with block runes, using half blocks at
// the vertical edges for partially covered cells.
func (r *rasterizer) paintRect(c *canvas.Model, rc chartengine.Rect) {
	x0 := math.Max(rc.X, 0)
	y0 := math.Max(rc.Y, 0)
	x1 := math.Min(rc.X+rc.W, r.pxW)
	y1 := math.Min(rc.Y+rc.H, r.pxH)
	if x1 <= x0 || y1 <= y0 {
		return
	}

	cx0 := int(x0) / brailleXDensity
	cx1 := min(int(math.Ceil(x1))-1, int(r.pxW)-1) / brailleXDensity
	cy0 := int(y0) / brailleYDensity
	cy1 := min(int(math.Ceil(y1))-1, int(r.pxH)-1) / brailleYDensity

	ink := inkFor(rc.Color)
	for cy := cy0; cy <= cy1; cy++ {
		top := 0
		if cy == cy0 {
			top = int(y0) % brailleYDensity
		}
		bottom := brailleYDensity - 1
		if cy == cy1 {
			bottom = (int(math.Ceil(y1)) - 1) % brailleYDensity
		}

		rn := '█'
		switch {
		case top == 0 && bottom == brailleYDensity-1:
			rn = '█'
		case bottom < brailleYDensity/2:
			rn = '▀'
		case top >= brailleYDensity/2:
			rn = '▄'
		}

		for cx := cx0; cx <= cx1; cx++ {
			c.SetCell(canvas.Point{X: cx, Y: cy}, canvas.NewCellWithStyle(rn, ink))
		}
	}
}

// formatPrice picks a precision that reads well across magnitudes.
func formatPrice(f float64) string {
	af := math.Abs(f)
	switch {
	case f == 0:
		return "0"
	case af < 0.001:
		return fmt.Sprintf("%.1e", f)
	case af < 0.1:
		return fmt.Sprintf("%.4f", f)
	case af < 10:
		return fmt.Sprintf("%.2f", f)
	case af < 10000:
		return fmt.Sprintf("%.1f", f)
	default:
		return fmt.Sprintf("%.0f", f)
	}
}

// formatVolume compresses share counts into k/M/B units.
func formatVolume(v float64) string {
	av := math.Abs(v)
	switch {
	case av >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case av >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case av >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// timeLabel formats an axis timestamp: calendar dates for multi-day spans,
// clock time when zoomed into a single session.
func timeLabel(t time.Time, span time.Duration) string {
	if span >= 48*time.Hour {
		return t.Format("Jan 02")
	}
	return t.Format("15:04")
}

// formatSelection is the crosshair readout for the footer and status bar.
func formatSelection(pt *series.Point) string {
	if pt == nil {
		return ""
	}
	when := pt.Time.Format("Jan 02")
	switch v := pt.Value.(type) {
	case series.OHLC:
		s := fmt.Sprintf("%s  O %s  H %s  L %s  C %s",
			when,
			formatPrice(v.Open), formatPrice(v.High),
			formatPrice(v.Low), formatPrice(v.Close))
		if vol, ok := pt.Extras["volume"].(float64); ok {
			s += "  V " + formatVolume(vol)
		}
		return s
	default:
		return fmt.Sprintf("%s  %s", when, formatPrice(pt.Value.Primary()))
	}
}
