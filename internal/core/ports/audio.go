package ports

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// AudioDecoder turns an audio reference into mono samples.
type AudioDecoder interface {
	Decode(ctx context.Context, ref domain.AudioRef) (domain.Samples, error)
}

// DecodeError reports a failed fetch or decode of Source.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("decode audio: %v", e.Err)
	}
	return fmt.Sprintf("decode audio %q: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
