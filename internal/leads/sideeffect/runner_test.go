package sideeffect

import (
	"context"
	"errors"
	"testing"
	"time"

	"roofline_backend/platform/logger"

	"github.com/google/uuid"
)

func testRunner() *Runner {
	return NewRunner(logger.New("development"))
}

func TestRunReportsPerEffectOutcomes(t *testing.T) {
	boom := errors.New("boom")
	outcomes := testRunner().Run(context.Background(), uuid.New(), []Effect{
		{Name: "ok", Run: func(context.Context) error { return nil }},
		{Name: "fails", Run: func(context.Context) error { return boom }},
	})

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	byName := map[string]Outcome{}
	for _, o := range outcomes {
		byName[o.Effect] = o
	}

	if !byName["ok"].OK() {
		t.Error("ok effect should succeed")
	}
	if byName["fails"].OK() {
		t.Error("failing effect should report its error")
	}
	if !errors.Is(byName["fails"].Err, boom) {
		t.Errorf("expected wrapped boom, got %v", byName["fails"].Err)
	}
}

func TestRunOneFailureDoesNotSuppressSiblings(t *testing.T) {
	ran := false
	testRunner().Run(context.Background(), uuid.New(), []Effect{
		{Name: "fails", Run: func(context.Context) error { return errors.New("down") }},
		{Name: "sibling", Run: func(context.Context) error { ran = true; return nil }},
	})

	if !ran {
		t.Error("sibling effect must still run")
	}
}

func TestRunRecoversPanics(t *testing.T) {
	outcomes := testRunner().Run(context.Background(), uuid.New(), []Effect{
		{Name: "panics", Run: func(context.Context) error { panic("kaboom") }},
	})

	if outcomes[0].OK() {
		t.Fatal("panicking effect should report an error")
	}
}

func TestRunAppliesPerEffectTimeout(t *testing.T) {
	runner := testRunner().WithTimeout(10 * time.Millisecond)

	outcomes := runner.Run(context.Background(), uuid.New(), []Effect{
		{Name: "slow", Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	})

	if !errors.Is(outcomes[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", outcomes[0].Err)
	}
}
