package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	fn := func() error {
		attempts++
		return nil // Success on first attempt
	}

	err := WithBackoff(context.Background(), testConfig(), fn)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	fn := func() error {
		attempts++
		if attempts < 2 {
			return &HTTPError{StatusCode: 500, Message: "Server Error"}
		}
		return nil // Success on 2nd attempt
	}

	start := time.Now()
	err := WithBackoff(context.Background(), testConfig(), fn)
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	// Exactly one backoff delay of InitialDelay before the second attempt.
	if elapsed < 10*time.Millisecond {
		t.Errorf("expected at least one base delay, elapsed %v", elapsed)
	}
	if elapsed > 25*time.Millisecond {
		t.Errorf("expected a single base delay, elapsed %v", elapsed)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	testErr := &HTTPError{StatusCode: 500, Message: "Server Error"}
	fn := func() error {
		attempts++
		return testErr // Always fail
	}

	start := time.Now()
	err := WithBackoff(context.Background(), testConfig(), fn)
	elapsed := time.Since(start)

	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	// The final attempt's error is surfaced unchanged, not wrapped.
	if !errors.Is(err, testErr) {
		t.Errorf("expected final attempt error, got %v", err)
	}
	if err.Error() != testErr.Error() {
		t.Errorf("expected error message %q, got %q", testErr.Error(), err.Error())
	}
	// Delays: InitialDelay then 2*InitialDelay.
	if elapsed < 30*time.Millisecond {
		t.Errorf("expected backoff delays of 10ms+20ms, elapsed %v", elapsed)
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	// Configuration errors carry no transient signal and abort the loop.
	testErr := errors.New("API key not configured")
	fn := func() error {
		attempts++
		return testErr
	}

	err := WithBackoff(context.Background(), testConfig(), fn)

	if err == nil {
		t.Error("expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt (non-retryable), got %d", attempts)
	}
	if !errors.Is(err, testErr) {
		t.Errorf("expected same error, got %v", err)
	}
}

func TestWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	fn := func() error {
		attempts++
		cancel()
		return &HTTPError{StatusCode: 503, Message: "Service Unavailable"}
	}

	err := WithBackoff(ctx, testConfig(), fn)

	if err == nil {
		t.Error("expected error, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"http 500", &HTTPError{StatusCode: 500, Message: "Internal Server Error"}, true},
		{"http 429", &HTTPError{StatusCode: 429, Message: "Too Many Requests"}, true},
		{"http 408", &HTTPError{StatusCode: 408, Message: "Request Timeout"}, true},
		{"http 400", &HTTPError{StatusCode: 400, Message: "Bad Request"}, true},
		{"http 404", &HTTPError{StatusCode: 404, Message: "Not Found"}, true},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "example.invalid"}, true},
		{"configuration error", errors.New("API key not configured"), false},
		{"transient-marked error", Transient(errors.New("empty body")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransient_Unwrap(t *testing.T) {
	inner := errors.New("inner failure")
	wrapped := Transient(inner)

	if !errors.Is(wrapped, inner) {
		t.Error("expected Transient error to unwrap to inner error")
	}
	if wrapped.Error() != inner.Error() {
		t.Errorf("expected message %q, got %q", inner.Error(), wrapped.Error())
	}
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
}
