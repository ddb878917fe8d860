package models

import "errors"

// Domain error sentinels. Callers classify failures with errors.Is and
// map them to transport codes at the handler boundary.
var (
	// ErrInsufficientData means the training series is shorter than the
	// minimum the chosen strategy or the evaluator requires.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotTrained means a forecast was requested from a model value
	// that was never fitted.
	ErrNotTrained = errors.New("model not trained")

	// ErrNoActiveModel means no persisted active model exists for the scope.
	ErrNoActiveModel = errors.New("no active model")
)
