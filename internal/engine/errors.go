package engine

import (
	"errors"
	"fmt"
)

// InsufficientHistoryError is returned by Forecast when the supplied
// history is shorter than the minimum the models need.
type InsufficientHistoryError struct {
	Got  int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: got %d samples, need at least %d", e.Got, e.Need)
}

// FeatureExtractionError is returned when the input samples cannot be
// coerced into a rectangular numeric feature table.
type FeatureExtractionError struct {
	Reason string
}

func (e *FeatureExtractionError) Error() string {
	return "feature extraction failed: " + e.Reason
}

// ModelInferenceError marks a forecaster failure. It never escapes
// Forecast; the fallback estimator recovers it internally.
type ModelInferenceError struct {
	Stage string
	Err   error
}

func (e *ModelInferenceError) Error() string {
	return fmt.Sprintf("model inference failed at %s: %v", e.Stage, e.Err)
}

func (e *ModelInferenceError) Unwrap() error {
	return e.Err
}

func IsInsufficientHistory(err error) bool {
	var target *InsufficientHistoryError
	return errors.As(err, &target)
}
