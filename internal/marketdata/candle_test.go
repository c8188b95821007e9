package marketdata_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotelab/tickmark/internal/marketdata"
	"github.com/quotelab/tickmark/internal/series"
)

func TestCandleColumnExtraction(t *testing.T) {
	t.Parallel()

	candles := []marketdata.Candle{
		{Open: 10, High: 12, Low: 9, Close: 11},
		{Open: 11, High: 14, Low: 10, Close: 13},
	}

	assert.Equal(t, []float64{11, 13}, marketdata.Closes(candles))
	assert.Equal(t, []float64{12, 14}, marketdata.Highs(candles))
	assert.Equal(t, []float64{9, 10}, marketdata.Lows(candles))
}

func TestPointsCarryOHLCAndVolume(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	pts := marketdata.Points([]marketdata.Candle{
		{Time: at, Open: 10, High: 12, Low: 9, Close: 11, Volume: 5000},
	})
	require.Len(t, pts, 1)

	ohlc, ok := pts[0].Value.(series.OHLC)
	require.True(t, ok)
	assert.Equal(t, series.OHLC{Open: 10, High: 12, Low: 9, Close: 11}, ohlc)
	assert.Equal(t, at, pts[0].Time)
	assert.Equal(t, 5000.0, pts[0].Extras["volume"])
}

func TestVolumePointsAreScalars(t *testing.T) {
	t.Parallel()

	pts := marketdata.VolumePoints([]marketdata.Candle{{Volume: 1100}, {Volume: 900}})
	require.Len(t, pts, 2)
	assert.Equal(t, series.Scalar(1100), pts[0].Value)
	assert.Equal(t, series.Scalar(900), pts[1].Value)
}
