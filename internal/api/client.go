package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/SebastianObert/AirCare/internal/logger"
	"github.com/SebastianObert/AirCare/models"
)

var (
	ErrRateLimited = errors.New("rate limited by upstream")
	ErrCircuitOpen = errors.New("circuit breaker open")

	errPermanent = errors.New("non-retryable API error")
)

type Client struct {
	httpClient *http.Client
	rateLimit  models.RateLimitSettings
	limiter    *time.Ticker
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(name string, rl models.RateLimitSettings) *Client {
	interval := rl.PerDuration / time.Duration(rl.MaxRequests)

	ticker := time.NewTicker(interval)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rateLimit:  rl,
		limiter:    ticker,
		breaker:    cb,
	}
}

func (c *Client) Do(ctx context.Context, url string, headers map[string]string) ([]byte, error) {

	select {
	case <-c.limiter.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	const maxRetries = 3
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		logger.Info("Making request to %s (attempt %d)", url, i+1)

		result, err := c.breaker.Execute(func() (interface{}, error) {
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, ErrRateLimited
			}
			if resp.StatusCode >= 400 {
				body, _ := io.ReadAll(resp.Body)
				logger.Error("API returned status code %d. Body: %s", resp.StatusCode, string(body))
				if resp.StatusCode < 500 {
					// A 4xx will not heal on retry.
					return nil, fmt.Errorf("%w: %s", errPermanent, resp.Status)
				}
				return nil, fmt.Errorf("server error: %s", resp.Status)
			}

			return io.ReadAll(resp.Body)
		})
		if err == nil {
			return result.([]byte), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		if errors.Is(err, errPermanent) {
			return nil, err
		}

		lastErr = err
		logger.Error("HTTP request failed (attempt %d): %v", i+1, err)
		if errors.Is(err, ErrRateLimited) {
			time.Sleep(5 * time.Second)
		} else {
			time.Sleep(2 * time.Second)
		}
	}

	return nil, fmt.Errorf("failed to fetch data after max retries: %w", lastErr)
}
