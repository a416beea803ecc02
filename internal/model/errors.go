package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDataFetch marks market data that could not be obtained for one asset.
	ErrDataFetch = errors.New("market data unavailable")
	// ErrEmptySeries marks a provider answer with no candles.
	ErrEmptySeries = fmt.Errorf("%w: no candles returned", ErrDataFetch)
	// ErrNewsFetch marks a headline source failure.
	ErrNewsFetch = errors.New("headlines unavailable")
	// ErrCompute marks a series an indicator cannot evaluate.
	ErrCompute = errors.New("indicator not computable")
	// ErrNotificationDelivery marks a sink that did not accept a message.
	ErrNotificationDelivery = errors.New("notification not delivered")
	// ErrConfiguration marks a fatal startup configuration problem.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrCycleInterrupted is returned when a stop is observed between assets.
	ErrCycleInterrupted = errors.New("analysis cycle interrupted")
)
