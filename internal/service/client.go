// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package service is the HTTP client for the board conversion service.
//
// The service accepts one image as multipart/form-data under the "file"
// field at POST {base}/convert and answers with the position as SFEN, CSA
// and a board matrix. Errors come back as {"detail": "..."}.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/pdiddy/sfenizer/internal/httputil"
	"github.com/pdiddy/sfenizer/pkg/types"
)

const (
	convertPath = "/convert"
	healthPath  = "/health"

	// FileField is the multipart field the service reads the image from.
	FileField = "file"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// ErrProtocol reports a response that does not follow the service
// contract: a non-2xx without a usable detail, or a 2xx body that does not
// decode as a result.
var ErrProtocol = errors.New("unexpected response from conversion service")

// Error is a non-2xx response carrying a human-readable detail.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("conversion service: HTTP %d: %s", e.Status, e.Detail)
}

// Client talks to one conversion service root.
type Client struct {
	http *http.Client
	cfg  types.ServiceConfig

	newRequestID func() string
}

// NewClient returns a Client for cfg.APIBaseURL. cfg must already be
// resolved (see types.Config.Resolve).
func NewClient(httpClient *http.Client, cfg types.ServiceConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{http: httpClient, cfg: cfg, newRequestID: uuid.NewString}
}

// BaseURL returns the service root this client targets.
func (c *Client) BaseURL() string { return c.cfg.APIBaseURL }

// Convert uploads one image and decodes the resulting position. Exactly one
// request is sent; nothing is retried.
func (c *Client) Convert(ctx context.Context, filename, mimeType string, data []byte) (*types.ConversionResult, error) {
	body, contentType, err := httputil.MultipartFile(FileField, filename, mimeType, data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+convertPath, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request: %w", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseBytes)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if detail, ok := httputil.ErrorDetail(limited); ok {
			return nil, &Error{Status: resp.StatusCode, Detail: detail}
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrProtocol, resp.StatusCode)
	}

	var result types.ConversionResult
	if err := json.NewDecoder(limited).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding result: %v", ErrProtocol, err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: service reported success=false", ErrProtocol)
	}
	return &result, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health queries GET {base}/health and returns the reported status. The
// request is idempotent, so 429 and 503 answers are retried.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBaseURL+healthPath, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return "", fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("health check returned HTTP %d", resp.StatusCode)
	}

	var hr healthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&hr); err != nil {
		return "", fmt.Errorf("%w: decoding health: %v", ErrProtocol, err)
	}
	return hr.Status, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("X-Request-ID", c.newRequestID())
}
