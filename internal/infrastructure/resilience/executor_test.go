package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
		BreakerEnabled:    false,
	}
}

func TestExecuteRetriesUntilModelResponds(t *testing.T) {
	exec := NewExecutor(fastConfig())

	errBusy := errors.New("model busy")
	attempts := 0
	err := exec.Execute(context.Background(), "ollama.generate", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errBusy
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{
			Retryable:     errors.Is(err, errBusy),
			RecordFailure: true,
		}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteGivesUpOnPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastConfig())

	errBadRequest := errors.New("invalid prompt")
	attempts := 0
	err := exec.Execute(context.Background(), "ollama.generate", func(context.Context) error {
		attempts++
		return errBadRequest
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})
	if !errors.Is(err, errBadRequest) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteNilClassifierNeverRetries(t *testing.T) {
	exec := NewExecutor(fastConfig())

	errAny := errors.New("boom")
	attempts := 0
	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		return errAny
	}, nil)
	if !errors.Is(err, errAny) {
		t.Fatalf("expected error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("strict default must not retry, got %d attempts", attempts)
	}
}

func TestExecuteOpensBreakerAfterRepeatedFailures(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:          1,
		InitialBackoff:       1 * time.Millisecond,
		MaxBackoff:           1 * time.Millisecond,
		BackoffMultiplier:    2,
		BreakerEnabled:       true,
		BreakerMinSamples:    2,
		BreakerFailureRatio:  0.5,
		BreakerCooldown:      50 * time.Millisecond,
		BreakerHalfOpenCalls: 1,
	})

	errDown := errors.New("model unavailable")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "ollama.recognize", func(context.Context) error {
			return errDown
		}, classifier)
		if !errors.Is(err, errDown) {
			t.Fatalf("expected model error on call %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "ollama.recognize", func(context.Context) error {
		t.Fatal("open breaker must not reach the operation")
		return nil
	}, classifier)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected gobreaker open state, got %v", err)
	}
}

func TestBreakersAreIsolatedByOperation(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:          1,
		InitialBackoff:       1 * time.Millisecond,
		MaxBackoff:           1 * time.Millisecond,
		BackoffMultiplier:    2,
		BreakerEnabled:       true,
		BreakerMinSamples:    2,
		BreakerFailureRatio:  0.5,
		BreakerCooldown:      50 * time.Millisecond,
		BreakerHalfOpenCalls: 1,
	})

	errDown := errors.New("model unavailable")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		_ = exec.Execute(context.Background(), "ollama.generate", func(context.Context) error {
			return errDown
		}, classifier)
	}

	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		return nil
	}, classifier)
	if err != nil {
		t.Fatalf("unrelated operation must stay closed, got %v", err)
	}
}
