package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func retryOnlyConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRecoversAfterTransientFailures(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig())

	errTransient := errors.New("transient")
	attempts := 0
	err := exec.Execute(context.Background(), "publish", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errTransient), RecordFailure: true}
	})

	if err != nil {
		t.Fatalf("Execute() error = %v, want recovery", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteFailsFastOnPermanentError(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig())

	errPermanent := errors.New("permanent")
	attempts := 0
	err := exec.Execute(context.Background(), "publish", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})

	if !errors.Is(err, errPermanent) {
		t.Fatalf("Execute() error = %v, want permanent error", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestExecuteWithoutClassifierNeverRetries(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig())

	attempts := 0
	errBoom := errors.New("boom")
	err := exec.Execute(context.Background(), "publish", func(context.Context) error {
		attempts++
		return errBoom
	}, nil)

	if !errors.Is(err, errBoom) {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 without a classifier", attempts)
	}
}

func TestExecuteStopsWhenContextCancelled(t *testing.T) {
	cfg := retryOnlyConfig()
	cfg.RetryInitialBackoff = 50 * time.Millisecond
	cfg.RetryMaxBackoff = 50 * time.Millisecond
	exec := NewExecutor(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errTransient := errors.New("transient")
	attempts := 0
	err := exec.Execute(ctx, "publish", func(context.Context) error {
		attempts++
		cancel()
		return errTransient
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("Execute() error = %v, want last attempt error", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 after cancellation", attempts)
	}
}

func TestExecuteOpensCircuitAfterRepeatedFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := errors.New("broker down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "publish", func(context.Context) error {
			return errDown
		}, classifier)
		if !errors.Is(err, errDown) {
			t.Fatalf("iteration %d: error = %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "publish", func(context.Context) error {
		t.Fatalf("open circuit must not invoke the operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Execute() error = %v, want open circuit", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("IsCircuitOpen(%v) = false", err)
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Second,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := errors.New("down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
	for i := 0; i < 2; i++ {
		_ = exec.Execute(context.Background(), "failing", func(context.Context) error {
			return errDown
		}, classifier)
	}

	if err := exec.Execute(context.Background(), "healthy", func(context.Context) error {
		return nil
	}, classifier); err != nil {
		t.Fatalf("healthy operation affected by failing breaker: %v", err)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    5,
		RetryInitialBackoff: 10 * time.Millisecond,
		RetryMaxBackoff:     25 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	if got := exec.backoffFor(1); got != 10*time.Millisecond {
		t.Fatalf("backoffFor(1) = %v", got)
	}
	if got := exec.backoffFor(2); got != 20*time.Millisecond {
		t.Fatalf("backoffFor(2) = %v", got)
	}
	if got := exec.backoffFor(4); got != 25*time.Millisecond {
		t.Fatalf("backoffFor(4) = %v, want cap", got)
	}
}
