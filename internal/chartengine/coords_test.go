package chartengine_test

import (
	"math"
	"testing"

	"github.com/quotelab/tickmark/internal/chartengine"
)

func testMapper(visible int) chartengine.Mapper {
	return chartengine.NewMapper(
		100, 60,
		chartengine.Margin{Left: 10, Right: 10, Top: 5, Bottom: 5},
		chartengine.ValueRange{Min: 0, Max: 100},
		visible,
	)
}

func TestMapperEndpoints(t *testing.T) {
	t.Parallel()

	for _, visible := range []int{2, 3, 5, 17, 100} {
		m := testMapper(visible)
		if x := m.ToX(0); math.Abs(x-10) > 1e-6 {
			t.Fatalf("visible=%d: ToX(0)=%v, want left margin 10", visible, x)
		}
		if x := m.ToX(visible - 1); math.Abs(x-90) > 1e-6 {
			t.Fatalf("visible=%d: ToX(last)=%v, want width-right=90", visible, x)
		}
	}
}

func TestMapperToYMonotonicallyDecreasing(t *testing.T) {
	t.Parallel()

	m := testMapper(10)
	prev := math.Inf(1)
	for v := 0.0; v <= 100; v += 5 {
		y := m.ToY(v)
		if y >= prev {
			t.Fatalf("ToY(%v)=%v not below ToY of previous smaller value %v", v, y, prev)
		}
		prev = y
	}

	// Range extremes land on the plot edges.
	if y := m.ToY(0); math.Abs(y-55) > 1e-6 {
		t.Fatalf("ToY(min)=%v, want plot bottom 55", y)
	}
	if y := m.ToY(100); math.Abs(y-5) > 1e-6 {
		t.Fatalf("ToY(max)=%v, want plot top 5", y)
	}
}

func TestMapperSinglePointNoDivisionByZero(t *testing.T) {
	t.Parallel()

	m := testMapper(1)
	x := m.ToX(0)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		t.Fatalf("ToX(0) with one visible point = %v", x)
	}
	if math.Abs(x-10) > 1e-6 {
		t.Fatalf("ToX(0)=%v, want left margin 10", x)
	}
}

func TestMapperIndexAtRoundTrip(t *testing.T) {
	t.Parallel()

	for _, visible := range []int{1, 2, 7, 50} {
		m := testMapper(visible)
		for i := range visible {
			got, ok := m.IndexAt(m.ToX(i))
			if !ok {
				t.Fatalf("visible=%d: IndexAt(ToX(%d)) not ok", visible, i)
			}
			if got != i {
				t.Fatalf("visible=%d: IndexAt(ToX(%d))=%d", visible, i, got)
			}
		}
	}
}

func TestMapperIndexAtOutsidePlot(t *testing.T) {
	t.Parallel()

	m := testMapper(10)
	for _, x := range []float64{-1, 0, 9.99, 90.01, 100, 250} {
		if _, ok := m.IndexAt(x); ok {
			t.Fatalf("IndexAt(%v) accepted a coordinate outside the plot", x)
		}
	}
	if _, ok := testMapper(0).IndexAt(50); ok {
		t.Fatal("IndexAt on an empty window reported ok")
	}
}
