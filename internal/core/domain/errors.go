package domain

import "errors"

var (
	ErrNotFound         = errors.New("domain: not found")
	ErrDuplicateISRC    = errors.New("domain: duplicate ISRC")
	ErrInvalidArgument  = errors.New("domain: invalid argument")
	ErrNoTracks         = errors.New("domain: no tracks to analyze")
	ErrEmptySignal      = errors.New("domain: zero audio samples")
	ErrInsufficientData = errors.New("domain: insufficient data")
)
