package pq

import "errors"

var (
	// ErrShapeMismatch is returned when ground truth and prediction grids do
	// not have the same dimensions.
	ErrShapeMismatch = errors.New("label maps differ in shape")

	// ErrMissingChannel is returned when a scored class has no channel in one
	// of the n-ary masks being compared.
	ErrMissingChannel = errors.New("class channel is missing")

	ErrUnknownPolicy   = errors.New("unknown match policy")
	ErrUnknownStrategy = errors.New("unknown image strategy")
)
