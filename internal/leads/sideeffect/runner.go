// Package sideeffect runs best-effort automations behind an isolated
// failure boundary. The mandatory state change has already been committed
// by the time anything here executes; nothing in this package may make the
// caller's operation fail.
package sideeffect

import (
	"context"
	"fmt"
	"time"

	"roofline_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds each individual effect so a stalled third party
// cannot pin a goroutine forever.
const DefaultTimeout = 30 * time.Second

// Effect is one independent automation.
type Effect struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outcome reports what happened to one effect.
type Outcome struct {
	Effect   string
	Err      error
	Duration time.Duration
}

// OK reports whether the effect completed without error.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Runner executes effects concurrently, each inside its own failure
// boundary, and reports per-effect outcomes for observability.
type Runner struct {
	log     *logger.Logger
	timeout time.Duration
}

func NewRunner(log *logger.Logger) *Runner {
	return &Runner{
		log:     log,
		timeout: DefaultTimeout,
	}
}

// WithTimeout overrides the per-effect timeout. Used by tests.
func (r *Runner) WithTimeout(timeout time.Duration) *Runner {
	r.timeout = timeout
	return r
}

// Run executes all effects and blocks until every one has finished or
// timed out. Errors and panics are captured in the returned outcomes and
// logged; they never propagate to the caller and one effect's failure
// never suppresses a sibling.
func (r *Runner) Run(ctx context.Context, leadID uuid.UUID, effects []Effect) []Outcome {
	outcomes := make([]Outcome, len(effects))

	g := new(errgroup.Group)
	for i, effect := range effects {
		g.Go(func() error {
			start := time.Now()
			err := r.runOne(ctx, effect)
			outcomes[i] = Outcome{
				Effect:   effect.Name,
				Err:      err,
				Duration: time.Since(start),
			}
			// Failures stay inside the outcome; returning nil keeps the
			// group from cancelling siblings.
			return nil
		})
	}
	_ = g.Wait()

	if r.log != nil {
		for _, outcome := range outcomes {
			r.log.SideEffect(outcome.Effect, leadID.String(), outcome.Duration, outcome.Err)
		}
	}

	return outcomes
}

// Dispatch runs the effects without blocking the caller. Used on the
// request path where the mandatory write has already returned.
func (r *Runner) Dispatch(leadID uuid.UUID, effects []Effect) {
	go r.Run(context.Background(), leadID, effects)
}

func (r *Runner) runOne(ctx context.Context, effect Effect) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s panicked: %v", effect.Name, rec)
		}
	}()

	effectCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return effect.Run(effectCtx)
}
