package extractor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"studyforge/internal/domain/entity"
	"studyforge/internal/resilience/circuitbreaker"
	"studyforge/internal/resilience/retry"
)

// Sentinel errors for URL fetching.
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrTimeout          = errors.New("fetch timed out")
	ErrBodyTooLarge     = errors.New("response body exceeds size limit")
	ErrTooManyRedirects = errors.New("too many redirects")

	errNoFetcher = errors.New("no URL fetcher configured")
)

// Fetcher retrieves the raw body of a URL as text.
// Unlike a scraper there is no content-type negotiation and no HTML
// stripping: whatever the server returns is the extracted text. Hardening is
// carried anyway: SSRF validation on the target and every redirect hop, a
// response size cap enforced while reading, a per-request timeout and a
// circuit breaker in front of the outbound call.
//
// Thread safety: Fetcher is safe for concurrent use.
type Fetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         FetchConfig
	logger         *slog.Logger
}

// NewFetcher creates a URL fetcher with the given configuration.
func NewFetcher(config FetchConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	fetcher := &Fetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.URLFetchConfig()),
		config:         config,
		logger:         logger,
	}

	// Each redirect target gets the same SSRF validation as the initial URL.
	fetcher.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= fetcher.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := fetcher.validate(req.URL.String()); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return fetcher
}

// FetchText implements URLFetcher. It validates the URL, executes the GET
// through the circuit breaker with backoff on transient network failures and
// returns the raw body.
func (f *Fetcher) FetchText(ctx context.Context, urlStr string) (string, error) {
	if err := f.validate(urlStr); err != nil {
		return "", err
	}

	var body string
	retryErr := retry.WithBackoff(ctx, retry.URLFetchConfig(), func() error {
		result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, urlStr)
		})
		if err != nil {
			return err
		}
		body = result.(string)
		return nil
	})
	if retryErr != nil {
		return "", retryErr
	}
	return body, nil
}

// validate applies scheme/host checks and, when configured, the private
// network block from the domain layer.
func (f *Fetcher) validate(urlStr string) error {
	if f.config.DenyPrivateIPs {
		return entity.ValidateURL(urlStr)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

func (f *Fetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	// Size limit is enforced while reading, not trusted from Content-Length.
	limitedReader := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response size exceeds %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	return string(body), nil
}
