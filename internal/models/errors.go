package models

import "errors"

// Custom errors
var (
	// ErrNotFound indicates a requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientData indicates too few labeled rows to train
	ErrInsufficientData = errors.New("insufficient labeled data")

	// ErrUnsupportedStat indicates a stat field outside the supported set
	ErrUnsupportedStat = errors.New("unsupported stat field")

	// ErrLookbackMismatch indicates a requested lookback that disagrees with
	// the active model's trained lookback
	ErrLookbackMismatch = errors.New("lookback does not match active model")

	// ErrInvalidTestFraction indicates a test fraction outside (0, 0.8)
	ErrInvalidTestFraction = errors.New("test fraction must be > 0 and < 0.8")

	// ErrNoEligibleRows indicates the evaluation population filter left no rows
	ErrNoEligibleRows = errors.New("no eligible rows for evaluation")
)
