package indicator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotelab/tickmark/internal/indicator"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range n {
		out[i] = float64(i + 1)
	}
	return out
}

func TestSMAKnownValues(t *testing.T) {
	t.Parallel()

	got, err := indicator.SMA([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Zero(t, got[0], "warm-up prefix stays zero")
	assert.InDelta(t, 1.5, got[1], 1e-9)
	assert.InDelta(t, 2.5, got[2], 1e-9)
	assert.InDelta(t, 4.5, got[4], 1e-9)
}

func TestEMAConstantSeries(t *testing.T) {
	t.Parallel()

	values := make([]float64, 20)
	for i := range values {
		values[i] = 10
	}

	got, err := indicator.EMA(values, 4)
	require.NoError(t, err)
	for i := indicator.FirstValid(4); i < len(got); i++ {
		assert.InDelta(t, 10.0, got[i], 1e-9, "index %d", i)
	}
}

func TestRSIMonotonicSeries(t *testing.T) {
	t.Parallel()

	up, err := indicator.RSI(ramp(40), 14)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, up[len(up)-1], 1e-6)

	falling := make([]float64, 40)
	for i := range falling {
		falling[i] = float64(100 - i)
	}
	down, err := indicator.RSI(falling, 14)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, down[len(down)-1], 1e-6)
}

func TestATRFlatSeriesIsZero(t *testing.T) {
	t.Parallel()

	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 50
	}

	got, err := indicator.ATR(flat, flat, flat, 14)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got[len(got)-1], 1e-9)
}

func TestSeriesArgumentValidation(t *testing.T) {
	t.Parallel()

	_, err := indicator.SMA(ramp(10), 0)
	assert.Error(t, err)

	_, err = indicator.SMA(ramp(4), 5)
	assert.Error(t, err)

	_, err = indicator.RSI(ramp(14), 14)
	assert.Error(t, err, "RSI needs period+1 samples")

	_, err = indicator.ATR(ramp(20), ramp(19), ramp(20), 14)
	assert.Error(t, err, "mismatched series lengths")
}

func TestFirstValid(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 13, indicator.FirstValid(14))
	assert.Equal(t, 0, indicator.FirstValid(1))
	assert.Equal(t, 0, indicator.FirstValid(0))
}
