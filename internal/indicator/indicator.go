// Package indicator computes technical indicator series and a composite
// sentiment reading from close prices.
//
// The series functions wrap go-talib and keep its alignment convention:
// the returned slice has the same length as the input, with the warm-up
// prefix zero-filled. FirstValid reports where real values begin.
package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average of values over period.
func SMA(values []float64, period int) ([]float64, error) {
	if err := checkArgs("SMA", len(values), period, period); err != nil {
		return nil, err
	}
	return talib.Sma(values, period), nil
}

// EMA returns the exponential moving average of values over period.
func EMA(values []float64, period int) ([]float64, error) {
	if err := checkArgs("EMA", len(values), period, period); err != nil {
		return nil, err
	}
	return talib.Ema(values, period), nil
}

// RSI returns the Wilder-smoothed relative strength index of values.
// It needs period+1 samples for the first reading.
func RSI(values []float64, period int) ([]float64, error) {
	if err := checkArgs("RSI", len(values), period, period+1); err != nil {
		return nil, err
	}
	return talib.Rsi(values, period), nil
}

// ATR returns the average true range from aligned high/low/close series.
func ATR(highs, lows, closes []float64, period int) ([]float64, error) {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return nil, fmt.Errorf("indicator: ATR series lengths differ: %d/%d/%d",
			len(highs), len(lows), len(closes))
	}
	if err := checkArgs("ATR", len(closes), period, period+1); err != nil {
		return nil, err
	}
	return talib.Atr(highs, lows, closes, period), nil
}

// FirstValid reports the index of the first meaningful sample in a series
// produced by SMA or EMA. RSI and ATR consume one extra bar.
func FirstValid(period int) int {
	if period < 1 {
		return 0
	}
	return period - 1
}

func checkArgs(name string, n, period, min int) error {
	if period <= 0 {
		return fmt.Errorf("indicator: %s period must be positive, got %d", name, period)
	}
	if n < min {
		return fmt.Errorf("indicator: %s(%d) needs at least %d samples, got %d", name, period, min, n)
	}
	return nil
}
