package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/coursegraph/pkg/buildinfo"
	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
	"github.com/matzehuels/coursegraph/pkg/observability"
)

// maxErrorBody bounds how much of an error response is kept in messages.
const maxErrorBody = 512

// Do sends req with client, reporting it to [observability.HTTP]. A
// User-Agent is set when the request has none. Transport failures are
// returned as retryable [cgerrors.ErrCodeNetwork] errors, or
// [cgerrors.ErrCodeTimeout] when the deadline passed.
func Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", buildinfo.UserAgent())
	}
	req = req.WithContext(ctx)

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeTimeout, err, "request to %s cancelled", host)
		}
		return nil, Retryable(cgerrors.Wrap(cgerrors.ErrCodeNetwork, err, "request to %s failed", host))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// CheckResponse returns nil for 2xx responses. Otherwise it reads a bounded
// prefix of the body and returns a structured error:
//
//   - 429: retryable [cgerrors.RateLimitedError] with the Retry-After hint
//   - 401, 403: [cgerrors.ErrCodeUnauthorized]
//   - 404: [cgerrors.ErrCodeNotFound]
//   - 5xx: retryable [cgerrors.ErrCodeNetwork]
//   - other: [cgerrors.ErrCodeInvalidInput]
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch code := resp.StatusCode; {
	case code == http.StatusTooManyRequests:
		return Retryable(&cgerrors.RateLimitedError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    msg,
		})
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return cgerrors.New(cgerrors.ErrCodeUnauthorized, "HTTP %d: %s", code, msg)
	case code == http.StatusNotFound:
		return cgerrors.New(cgerrors.ErrCodeNotFound, "HTTP %d: %s", code, msg)
	case code >= 500:
		return Retryable(cgerrors.New(cgerrors.ErrCodeNetwork, "HTTP %d: %s", code, msg))
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "HTTP %d: %s", code, msg)
	}
}

// parseRetryAfter accepts the delay-seconds form of Retry-After. HTTP dates
// and malformed values yield 0.
func parseRetryAfter(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DescribeError renders an error from [Do] or [CheckResponse] for logs.
func DescribeError(err error) string {
	var rl *cgerrors.RateLimitedError
	if errors.As(err, &rl) {
		return fmt.Sprintf("%s (%s)", rl.Error(), rl.Message)
	}
	return cgerrors.UserMessage(err)
}
