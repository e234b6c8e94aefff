package forecast

import "errors"

// Sentinel errors for forecast request validation and data sparsity.
// Validation errors fail fast before any recursion starts; sparsity
// errors are surfaced so callers can shorten the horizon or degrade.
var (
	ErrInvalidHorizon   = errors.New("forecast: horizon must be positive and within the configured bound")
	ErrUnknownScenario  = errors.New("forecast: unknown scenario id")
	ErrMissingHistory   = errors.New("forecast: not enough lagged observations for the requested window")
	ErrInsufficientData = errors.New("forecast: no allocation data for the requested key")
	ErrModelUnavailable = errors.New("forecast: trained model artifact unavailable")
	ErrFeatureMismatch  = errors.New("forecast: model feature list does not match snapshot features")
)
