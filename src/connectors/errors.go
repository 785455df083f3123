package connectors

import "errors"

var (
	errShortKlineRow = errors.New("kline row has fewer than 6 fields")

	// ErrNotEnoughCandles is returned when signal generation is requested
	// with less history than the analysis prompt requires.
	ErrNotEnoughCandles = errors.New("not enough candles for signal generation")

	// ErrIncompletePrediction is returned when the AI response parsed but
	// is missing predictions or explanation fields. Nothing from such a
	// response may be persisted.
	ErrIncompletePrediction = errors.New("incomplete prediction in AI response")
)
