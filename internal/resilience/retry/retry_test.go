package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func fastConfig(maxAttempts int) Config {
	return Config{
		MaxAttempts:    maxAttempts,
		InitialDelay:   10 * time.Millisecond,
		MaxDelay:       100 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoffFirstAttemptSucceeds(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("WithBackoff: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestWithBackoffRecoversFromTransientFailures(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: 503, Message: "Service Unavailable"}
		}
		return nil
	})

	if err != nil {
		t.Errorf("WithBackoff: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithBackoffExhaustsAttempts(t *testing.T) {
	serverErr := &HTTPError{StatusCode: 500, Message: "Internal Server Error"}
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return serverErr
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if !errors.Is(err, serverErr) {
		t.Errorf("err = %v, want wrapped %v", err, serverErr)
	}
}

func TestWithBackoffAbortsOnNonRetryableError(t *testing.T) {
	clientErr := &HTTPError{StatusCode: 400, Message: "Bad Request"}
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return clientErr
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 for a client error", attempts)
	}
	if err != clientErr {
		t.Errorf("err = %v, want the original error unwrapped", err)
	}
}

func TestWithBackoffStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := WithBackoff(ctx, fastConfig(5), func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return &HTTPError{StatusCode: 500, Message: "Internal Server Error"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if attempts < 2 {
		t.Errorf("attempts = %d, want at least 2 before cancellation", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"HTTP 500", &HTTPError{StatusCode: 500, Message: "Internal Server Error"}, true},
		{"HTTP 502", &HTTPError{StatusCode: 502, Message: "Bad Gateway"}, true},
		{"HTTP 503", &HTTPError{StatusCode: 503, Message: "Service Unavailable"}, true},
		{"HTTP 429", &HTTPError{StatusCode: 429, Message: "Too Many Requests"}, true},
		{"HTTP 408", &HTTPError{StatusCode: 408, Message: "Request Timeout"}, true},
		{"HTTP 400", &HTTPError{StatusCode: 400, Message: "Bad Request"}, false},
		{"HTTP 404", &HTTPError{StatusCode: 404, Message: "Not Found"}, false},
		{"ECONNREFUSED", syscall.ECONNREFUSED, true},
		{"ECONNRESET", syscall.ECONNRESET, true},
		{"ETIMEDOUT", syscall.ETIMEDOUT, true},
		{"ENETUNREACH", syscall.ENETUNREACH, true},
		{"plain error", errors.New("parse failure"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestConfigPresets(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		attempts     int
		initialDelay time.Duration
	}{
		{"default", DefaultConfig(), 3, time.Second},
		{"completion API", CompletionAPIConfig(), 3, 2 * time.Second},
		{"url fetch", URLFetchConfig(), 3, time.Second},
		{"database", DBConfig(), 3, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.MaxAttempts != tt.attempts {
				t.Errorf("MaxAttempts = %d, want %d", tt.cfg.MaxAttempts, tt.attempts)
			}
			if tt.cfg.InitialDelay != tt.initialDelay {
				t.Errorf("InitialDelay = %v, want %v", tt.cfg.InitialDelay, tt.initialDelay)
			}
			if tt.cfg.Multiplier != 2.0 {
				t.Errorf("Multiplier = %v, want 2.0", tt.cfg.Multiplier)
			}
			if tt.cfg.JitterFraction != 0.1 {
				t.Errorf("JitterFraction = %v, want 0.1", tt.cfg.JitterFraction)
			}
		})
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	err := &HTTPError{StatusCode: 500, Message: "Internal Server Error"}
	if got := err.Error(); got != "HTTP 500: Internal Server Error" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAddJitterStaysInRange(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Duration(float64(base) * 1.2)

	seen := make(map[time.Duration]bool)
	for i := 0; i < 10; i++ {
		got := addJitter(base, 0.2)
		if got < base || got > max {
			t.Errorf("addJitter = %v, want within [%v, %v]", got, base, max)
		}
		seen[got] = true
	}
	if len(seen) < 2 {
		t.Error("jitter produced identical results across 10 runs")
	}
}

func TestAddJitterZeroFraction(t *testing.T) {
	base := 100 * time.Millisecond
	if got := addJitter(base, 0); got != base {
		t.Errorf("addJitter with zero fraction = %v, want %v", got, base)
	}
}
