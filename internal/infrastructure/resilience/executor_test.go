package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastRetryConfig(attempts int) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesTransientCatalogRead(t *testing.T) {
	var retried []int
	cfg := fastRetryConfig(3)
	cfg.Hooks.OnRetry = func(op string, attempt int, _ error) {
		if op != "postgres.list_departments" {
			t.Errorf("unexpected operation %q", op)
		}
		retried = append(retried, attempt)
	}
	exec := NewExecutor(cfg)

	attempts := 0
	errConn := errors.New("connection reset")
	err := exec.Execute(context.Background(), " postgres.list_departments ", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errConn
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errConn), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Fatalf("unexpected retry hook calls %v", retried)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastRetryConfig(3))

	attempts := 0
	errSyntax := errors.New("syntax error")
	err := exec.Execute(context.Background(), "postgres.list_categories", func(context.Context) error {
		attempts++
		return errSyntax
	}, nil)
	if !errors.Is(err, errSyntax) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteReturnsLastErrorWhenContextEnds(t *testing.T) {
	cfg := fastRetryConfig(5)
	cfg.RetryInitialBackoff = 50 * time.Millisecond
	cfg.RetryMaxBackoff = 50 * time.Millisecond
	exec := NewExecutor(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	errDown := errors.New("nats down")
	err := exec.Execute(ctx, "nats.publish", func(context.Context) error {
		return errDown
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if !errors.Is(err, errDown) {
		t.Fatalf("expected last operation error, got %v", err)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	var transitions []string
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
		Hooks: Hooks{OnStateChange: func(_, from, to string) {
			transitions = append(transitions, from+"->"+to)
		}},
	})

	errDown := errors.New("nats down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
			return errDown
		}, classifier)
		if !errors.Is(err, errDown) {
			t.Fatalf("expected publish error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if exec.State("nats.publish") != "open" {
		t.Fatalf("expected open breaker, got %s", exec.State("nats.publish"))
	}
	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Fatalf("unexpected transitions %v", transitions)
	}
	if exec.State("postgres.list_departments") != "closed" {
		t.Fatalf("unknown operations report closed")
	}
}

func TestJitterStaysWithinSpread(t *testing.T) {
	exec := NewExecutor(Config{RetryJitter: 0.25})
	for i := 0; i < 100; i++ {
		got := exec.jittered(100 * time.Millisecond)
		if got < 75*time.Millisecond || got > 125*time.Millisecond {
			t.Fatalf("jittered wait %v outside ±25%%", got)
		}
	}
	if NewExecutor(Config{}).jittered(0) != 0 {
		t.Fatalf("zero wait must stay zero")
	}
}
