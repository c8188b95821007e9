package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/quotelab/tickmark/internal/observability"
)

// GridSpec describes the configured grid and the minimums required for one
// chart cell to render reasonably.
type GridSpec struct {
	Rows        int // configured rows (before clamping)
	Cols        int // configured cols (before clamping)
	MinCellW    int // inner chart width (no borders)
	MinCellH    int // inner chart height (no borders, no title line)
	HeaderLines int // lines reserved above the grid
}

// GridSize is the final rows/cols after clamping to available space.
type GridSize struct {
	Rows int
	Cols int
}

// GridDims are the computed sizes for one cell (uniform across the grid).
// *WithPadding includes the border and title overhead around each chart.
type GridDims struct {
	CellW            int
	CellH            int
	CellWWithPadding int
	CellHWithPadding int
}

// ItemsPerPage returns Rows*Cols with basic safety.
func ItemsPerPage(size GridSize) int {
	if size.Rows <= 0 || size.Cols <= 0 {
		return 0
	}
	return size.Rows * size.Cols
}

// EffectiveGridSize clamps Rows/Cols so that at least the minimum chart
// sizes fit in the current viewport.
func EffectiveGridSize(availW, availH int, spec GridSpec) GridSize {
	if availH > spec.HeaderLines {
		availH -= spec.HeaderLines
	} else {
		availH = 0
	}

	minWWithPad := spec.MinCellW + ChartBorderSize
	minHWithPad := spec.MinCellH + ChartBorderSize + ChartTitleHeight

	maxCols := 1
	if minWWithPad > 0 {
		if c := availW / minWWithPad; c > 1 {
			maxCols = c
		}
	}
	maxRows := 1
	if minHWithPad > 0 {
		if r := availH / minHWithPad; r > 1 {
			maxRows = r
		}
	}

	rows := min(max(spec.Rows, 1), maxRows)
	cols := min(max(spec.Cols, 1), maxCols)

	return GridSize{Rows: rows, Cols: cols}
}

// ComputeGridDims returns uniform per-cell sizes for the given grid size.
func ComputeGridDims(availW, availH int, spec GridSpec) GridDims {
	size := EffectiveGridSize(availW, availH, spec)

	if availH > spec.HeaderLines {
		availH -= spec.HeaderLines
	} else {
		availH = 0
	}

	cellWWithPad := 0
	if size.Cols > 0 {
		cellWWithPad = availW / size.Cols
	}
	cellHWithPad := 0
	if size.Rows > 0 {
		cellHWithPad = availH / size.Rows
	}

	innerW := max(max(cellWWithPad-ChartBorderSize, spec.MinCellW), 0)
	innerH := max(max(cellHWithPad-ChartBorderSize-ChartTitleHeight, spec.MinCellH), 0)

	return GridDims{
		CellW:            innerW,
		CellH:            innerH,
		CellWWithPadding: cellWWithPad,
		CellHWithPadding: cellHWithPad,
	}
}

// GridNavigator tracks grid pagination.
type GridNavigator struct {
	currentPage int
	totalPages  int
}

// Navigate changes the current page by direction (-1 prev, +1 next),
// wrapping at the ends. Returns true if the page changed.
func (gn *GridNavigator) Navigate(direction int) bool {
	if gn.totalPages <= 1 {
		return false
	}

	oldPage := gn.currentPage
	gn.currentPage += direction

	if gn.currentPage < 0 {
		gn.currentPage = gn.totalPages - 1
	} else if gn.currentPage >= gn.totalPages {
		gn.currentPage = 0
	}

	return gn.currentPage != oldPage
}

// UpdateTotalPages recalculates total pages from item count and page size.
func (gn *GridNavigator) UpdateTotalPages(itemCount, itemsPerPage int) {
	if itemsPerPage <= 0 {
		gn.totalPages = 0
		return
	}
	gn.totalPages = (itemCount + itemsPerPage - 1) / itemsPerPage

	if gn.currentPage >= gn.totalPages && gn.totalPages > 0 {
		gn.currentPage = gn.totalPages - 1
	}
	if gn.currentPage < 0 {
		gn.currentPage = 0
	}
}

// CurrentPage returns the current page index.
func (gn *GridNavigator) CurrentPage() int { return gn.currentPage }

// TotalPages returns the total number of pages.
func (gn *GridNavigator) TotalPages() int { return gn.totalPages }

// PageBounds returns the half-open panel index range of the current page.
func (gn *GridNavigator) PageBounds(itemCount, itemsPerPage int) (startIdx, endIdx int) {
	startIdx = gn.currentPage * itemsPerPage
	endIdx = min(startIdx+itemsPerPage, itemCount)
	return startIdx, endIdx
}

// SetPage jumps to the page containing item idx.
func (gn *GridNavigator) SetPage(idx, itemsPerPage int) {
	if itemsPerPage <= 0 {
		return
	}
	page := idx / itemsPerPage
	if page < 0 {
		page = 0
	}
	if gn.totalPages > 0 && page >= gn.totalPages {
		page = gn.totalPages - 1
	}
	gn.currentPage = page
}

// PanelGrid lays chart panels out in a paged grid and tracks which panel has
// focus. It is not goroutine safe; the model's state lock guards it.
type PanelGrid struct {
	ui     *UIConfig
	logger *observability.CoreLogger

	width, height int
	panels        []*ChartPanel
	nav           GridNavigator
	focusIdx      int
}

func NewPanelGrid(ui *UIConfig, logger *observability.CoreLogger) *PanelGrid {
	return &PanelGrid{ui: ui, logger: logger, focusIdx: 0}
}

func (pg *PanelGrid) spec() GridSpec {
	rows, cols := pg.ui.Grid()
	return GridSpec{
		Rows:        rows,
		Cols:        cols,
		MinCellW:    MinChartWidth,
		MinCellH:    MinChartHeight,
		HeaderLines: GridHeaderHeight,
	}
}

// Size returns the clamped grid size for the current viewport.
func (pg *PanelGrid) Size() GridSize {
	return EffectiveGridSize(pg.width, pg.height, pg.spec())
}

// Dims returns the per-cell dimensions for the current viewport.
func (pg *PanelGrid) Dims() GridDims {
	return ComputeGridDims(pg.width, pg.height, pg.spec())
}

// SetPanels replaces the panel list, keeping focus on the same symbol when
// it survives the replacement.
func (pg *PanelGrid) SetPanels(panels []*ChartPanel) {
	prev := ""
	if p := pg.FocusedPanel(); p != nil {
		prev = p.Symbol()
	}

	pg.panels = panels
	pg.focusIdx = 0
	for i, p := range panels {
		if p.Symbol() == prev {
			pg.focusIdx = i
			break
		}
	}
	pg.refreshPages()
	pg.applyFocus()
}

// Panels returns the panels in display order.
func (pg *PanelGrid) Panels() []*ChartPanel { return pg.panels }

// PanelCount returns the number of panels.
func (pg *PanelGrid) PanelCount() int { return len(pg.panels) }

// FocusedPanel returns the panel holding focus, or nil when there are none.
func (pg *PanelGrid) FocusedPanel() *ChartPanel {
	if pg.focusIdx < 0 || pg.focusIdx >= len(pg.panels) {
		return nil
	}
	return pg.panels[pg.focusIdx]
}

// UpdateDimensions resizes every panel for the new content viewport and
// recomputes pagination.
func (pg *PanelGrid) UpdateDimensions(contentWidth, contentHeight int) {
	pg.width, pg.height = contentWidth, contentHeight

	dims := pg.Dims()
	for _, p := range pg.panels {
		p.Resize(dims.CellW, dims.CellH)
	}

	pg.refreshPages()
	pg.drawVisible()
}

func (pg *PanelGrid) refreshPages() {
	pg.nav.UpdateTotalPages(len(pg.panels), ItemsPerPage(pg.Size()))
}

// Navigate flips to the previous or next page.
func (pg *PanelGrid) Navigate(direction int) {
	if !pg.nav.Navigate(direction) {
		return
	}
	// Move focus onto the new page so keyboard zoom stays visible.
	start, end := pg.nav.PageBounds(len(pg.panels), ItemsPerPage(pg.Size()))
	if pg.focusIdx < start || pg.focusIdx >= end {
		pg.focusIdx = start
	}
	pg.applyFocus()
	pg.drawVisible()
}

// FocusNext moves focus forward through all panels, paging as needed.
func (pg *PanelGrid) FocusNext(step int) {
	if len(pg.panels) == 0 {
		return
	}
	pg.focusIdx = (pg.focusIdx + step + len(pg.panels)) % len(pg.panels)
	pg.nav.SetPage(pg.focusIdx, ItemsPerPage(pg.Size()))
	pg.applyFocus()
	pg.drawVisible()
}

// FocusSymbol moves focus to the named panel, paging to it.
func (pg *PanelGrid) FocusSymbol(symbol string) {
	for i, p := range pg.panels {
		if p.Symbol() == symbol {
			pg.focusIdx = i
			pg.nav.SetPage(i, ItemsPerPage(pg.Size()))
			pg.applyFocus()
			pg.drawVisible()
			return
		}
	}
}

// PanelAt returns the panel in the given page cell, or nil.
func (pg *PanelGrid) PanelAt(row, col int) *ChartPanel {
	size := pg.Size()
	if row < 0 || row >= size.Rows || col < 0 || col >= size.Cols {
		return nil
	}
	start, end := pg.nav.PageBounds(len(pg.panels), ItemsPerPage(size))
	idx := start + row*size.Cols + col
	if idx >= end {
		return nil
	}
	return pg.panels[idx]
}

// HandleClick focuses the panel in the clicked cell.
func (pg *PanelGrid) HandleClick(row, col int) *ChartPanel {
	p := pg.PanelAt(row, col)
	if p == nil {
		return nil
	}
	size := pg.Size()
	start, _ := pg.nav.PageBounds(len(pg.panels), ItemsPerPage(size))
	pg.focusIdx = start + row*size.Cols + col
	pg.applyFocus()
	return p
}

// applyFocus mirrors focusIdx onto the panels' focused flags.
func (pg *PanelGrid) applyFocus() {
	for i, p := range pg.panels {
		p.SetFocused(i == pg.focusIdx)
	}
}

// drawVisible repaints the panels on the current page.
func (pg *PanelGrid) drawVisible() {
	size := pg.Size()
	start, end := pg.nav.PageBounds(len(pg.panels), ItemsPerPage(size))
	for i := start; i < end; i++ {
		pg.panels[i].Draw()
	}
}

// RenderGrid renders the header line and the paged grid of chart cells.
func (pg *PanelGrid) RenderGrid() string {
	header := headerStyle.Render("Charts")

	navInfo := ""
	if pg.nav.TotalPages() > 0 && len(pg.panels) > 0 {
		start, end := pg.nav.PageBounds(len(pg.panels), ItemsPerPage(pg.Size()))
		navInfo = navInfoStyle.Render(
			fmt.Sprintf(" [%d-%d of %d]", start+1, end, len(pg.panels)))
	}
	headerLine := lipgloss.JoinHorizontal(lipgloss.Left, header, navInfo)

	size := pg.Size()
	dims := pg.Dims()

	var rows []string
	for row := range size.Rows {
		var cols []string
		for col := range size.Cols {
			cols = append(cols, pg.renderCell(row, col, dims))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left, cols...))
	}
	gridContent := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return lipgloss.JoinVertical(lipgloss.Left, headerLine, gridContent)
}

// renderCell renders one bordered chart cell, or an empty placeholder slot.
func (pg *PanelGrid) renderCell(row, col int, dims GridDims) string {
	p := pg.PanelAt(row, col)
	if p == nil {
		return lipgloss.NewStyle().
			Width(dims.CellWWithPadding).
			Height(dims.CellHWithPadding).
			Render("")
	}

	boxStyle := borderStyle
	if p.Focused() {
		boxStyle = focusedBorderStyle
	}

	titleWidth := max(dims.CellWWithPadding-ChartBorderSize, 10)
	title := titleStyle.Render(TruncateTitle(p.TitleLine(), titleWidth))

	box := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, p.View()))

	return lipgloss.Place(
		dims.CellWWithPadding,
		dims.CellHWithPadding,
		lipgloss.Left,
		lipgloss.Top,
		box,
	)
}
