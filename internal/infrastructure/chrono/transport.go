package chrono

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "drchrono status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("drchrono %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("drchrono %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// do runs one API operation through the resilience executor. build must
// produce a fresh request per attempt so retried calls can replay bodies;
// handle sees every non-429 response.
func (c *Client) do(
	ctx context.Context,
	operation string,
	build func(context.Context) (*http.Request, error),
	handle func(*http.Response) error,
) error {
	return c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		req, err := build(ctx)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}

		header, err := c.tokens.AuthHeader(ctx)
		if err != nil {
			return domain.WrapError(domain.ErrUnauthorized, operation, err)
		}
		req.Header.Set("Authorization", header)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("drchrono %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			_, _ = io.Copy(io.Discard, resp.Body)
			return rateLimitError(resp)
		}
		return handle(resp)
	}, classifyChronoError)
}

// getJSON fetches url and decodes the body; any status >= 300 becomes an
// HTTPStatusError and is never retried.
func (c *Client) getJSON(ctx context.Context, operation, url string, out any) error {
	return c.do(ctx, operation,
		func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		},
		func(resp *http.Response) error {
			if resp.StatusCode >= 300 {
				return statusError(operation, resp)
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode %s response: %w", operation, err)
			}
			return nil
		})
}

func statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}

// rateLimitError captures the Retry-After header of a 429 response. A value
// past the app-limit threshold marks the hourly application limit rather
// than a transient burst.
func rateLimitError(resp *http.Response) *domain.RateLimitError {
	retryAfter := -1.0
	if header := resp.Header.Get("Retry-After"); header != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(header), 64); err == nil {
			retryAfter = v
		}
	}
	return &domain.RateLimitError{
		RetryAfter: retryAfter,
		AppLimit:   retryAfter > domain.AppLimitThresholdSeconds,
	}
}
