// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the service client and
// the local server.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff step for retryable statuses. Tests
// override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// maxRetryAfter caps a server-provided Retry-After so a misbehaving
// service cannot park the caller for minutes.
const maxRetryAfter = 30 * time.Second

const defaultMaxRetries = 3

// Retryable reports whether status is worth retrying for an idempotent
// request: 429 (rate limited) or 503 (service still starting).
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes an idempotent request and retries on Retryable
// statuses. The wait is the response's Retry-After (seconds) when present,
// otherwise RetryBaseDelay doubled per attempt.
//
// Only use this for requests that may be repeated. Conversions are sent once
// and never go through here.
//
// When maxRetries is 0 the default (3) is used. The body of each retried
// response is drained and closed. If the context is cancelled while waiting
// the function returns ctx.Err(). After exhausting retries the last response
// is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		return d
	}
	return RetryBaseDelay << attempt
}
