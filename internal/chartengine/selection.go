package chartengine

import (
	"time"

	"github.com/quotelab/tickmark/internal/series"
)

// Selection is the currently highlighted point, if any.
type Selection struct {
	Index int
	Point *series.Point
}

// None reports whether nothing is selected.
func (s Selection) None() bool { return s.Point == nil }

// SelectionCallback observes every selection transition: the selected point
// and its visible index, or (nil, -1) when the selection clears.
type SelectionCallback func(point *series.Point, index int)

// DefaultClearAfter is how long a selection lives before clearing itself.
const DefaultClearAfter = 2 * time.Second

// selectionModel owns the crosshair selection for one chart. Selecting and
// clearing happen on the owning goroutine. The auto-clear timer fires on a
// runtime timer goroutine and reaches the model again as a queued command
// carrying the generation it was armed for, so a selection made after the
// timer fired is never the one it clears.
type selectionModel struct {
	sel        Selection
	generation uint64
	clearAfter time.Duration
	timer      *time.Timer
	onChange   SelectionCallback
	expire     func(generation uint64)
}

func newSelectionModel(clearAfter time.Duration, onChange SelectionCallback, expire func(uint64)) *selectionModel {
	if clearAfter <= 0 {
		clearAfter = DefaultClearAfter
	}
	return &selectionModel{
		clearAfter: clearAfter,
		onChange:   onChange,
		expire:     expire,
	}
}

// selectIndex selects the point at visible index i and restarts the clear
// timer. Indices outside [0, len(visible)) are ignored.
func (s *selectionModel) selectIndex(i int, visible []series.Point) bool {
	if i < 0 || i >= len(visible) {
		return false
	}
	point := visible[i]
	s.sel = Selection{Index: i, Point: &point}
	s.generation++
	s.restartTimer()
	s.notify()
	return true
}

// clear unconditionally drops the selection and cancels the pending timer,
// reporting whether there was a selection to drop. The callback fires only
// on an actual transition.
func (s *selectionModel) clear() bool {
	s.generation++
	s.stopTimer()
	if s.sel.None() {
		return false
	}
	s.sel = Selection{}
	s.notify()
	return true
}

// clearExpired applies a timer expiry armed at generation gen. A select or
// clear that happened since supersedes it: last writer wins.
func (s *selectionModel) clearExpired(gen uint64) bool {
	if gen != s.generation {
		return false
	}
	return s.clear()
}

func (s *selectionModel) restartTimer() {
	s.stopTimer()
	gen := s.generation
	s.timer = time.AfterFunc(s.clearAfter, func() { s.expire(gen) })
}

func (s *selectionModel) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *selectionModel) notify() {
	if s.onChange == nil {
		return
	}
	if s.sel.None() {
		s.onChange(nil, -1)
		return
	}
	s.onChange(s.sel.Point, s.sel.Index)
}
