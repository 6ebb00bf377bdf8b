// Package worker provides bounded background processing for per-track jobs.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/sourcegraph/conc/iter"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// Pool fans per-track work out across a fixed number of goroutines.
type Pool struct {
	workers int
	timeout time.Duration
	log     logging.Logger
}

// NewPool creates a pool running at most workers jobs at once. Each job gets
// its own timeout; zero disables it. A nil logger uses the global logger.
func NewPool(workers int, timeout time.Duration, logger logging.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Pool{
		workers: workers,
		timeout: timeout,
		log:     logger.WithFields(logging.Fields{"component": "worker"}),
	}
}

// Enrich applies fn to every track and returns the results in input order.
// A track whose job fails, panics, times out or is skipped because ctx is done
// comes back unchanged; one failure never aborts the batch.
func (p *Pool) Enrich(ctx context.Context, tracks []domain.Track, fn func(context.Context, domain.Track) (domain.Track, error)) []domain.Track {
	mapper := iter.Mapper[domain.Track, domain.Track]{MaxGoroutines: p.workers}
	return mapper.Map(tracks, func(t *domain.Track) domain.Track {
		return p.process(ctx, *t, fn)
	})
}

func (p *Pool) process(ctx context.Context, track domain.Track, fn func(context.Context, domain.Track) (domain.Track, error)) domain.Track {
	if err := ctx.Err(); err != nil {
		p.log.Warn("skipping track", logging.Fields{"track_id": track.ID, "reason": err.Error()})
		return track
	}

	jobCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := p.call(jobCtx, track, fn)
	if err != nil {
		p.log.Warn("track job failed", logging.Fields{"track_id": track.ID, "error": err.Error()})
		return track
	}
	p.log.Debug("processed track", logging.Fields{"track_id": track.ID, "elapsed": time.Since(start).String()})
	return out
}

// call runs fn, turning a panic into an error so it stays inside the job.
func (p *Pool) call(ctx context.Context, track domain.Track, fn func(context.Context, domain.Track) (domain.Track, error)) (out domain.Track, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
			p.log.Error(err, "track job panicked", logging.Fields{"track_id": track.ID})
		}
	}()
	return fn(ctx, track)
}
