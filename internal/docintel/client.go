// Package docintel is a client for the Azure Form Recognizer (Document
// Intelligence) REST API: submitting a document for analysis, waiting for the
// result and listing available models.
package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-parser/internal/schemas"
	"github.com/rs/zerolog"
)

const (
	// DefaultAPIVersion is the REST API version used when none is configured.
	DefaultAPIVersion = "2023-07-31"
	// DefaultModelID is the general document model.
	DefaultModelID = "prebuilt-document"
	// DefaultPollInterval is used when the service does not send Retry-After.
	DefaultPollInterval = time.Second
	// DefaultTimeout bounds a complete analyze request including polling.
	DefaultTimeout = 2 * time.Minute

	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
	requestIDHeader       = "x-ms-client-request-id"
	maxErrorBody          = 64 * 1024
)

// Analyzer is the capability the resume parser needs from the analysis service.
type Analyzer interface {
	// Analyze submits document to modelID and blocks until the remote job completes.
	Analyze(ctx context.Context, modelID string, document []byte) (*AnalyzeResult, error)
	// ListModels returns the models available to the configured resource.
	ListModels(ctx context.Context) ([]ModelSummary, error)
}

// Options configures a Client.
type Options struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	Timeout      time.Duration
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       *zerolog.Logger
}

// Client talks to the analysis REST API.
type Client struct {
	endpoint     string
	apiKey       string
	apiVersion   string
	timeout      time.Duration
	pollInterval time.Duration
	http         *http.Client
	log          zerolog.Logger
}

// NewClient creates a Client from opts.
func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	parsed, err := url.Parse(opts.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", opts.Endpoint)
	}

	c := &Client{
		endpoint:     strings.TrimRight(opts.Endpoint, "/"),
		apiKey:       opts.APIKey,
		apiVersion:   opts.APIVersion,
		timeout:      opts.Timeout,
		pollInterval: opts.PollInterval,
		http:         opts.HTTPClient,
		log:          zerolog.Nop(),
	}
	if c.apiVersion == "" {
		c.apiVersion = DefaultAPIVersion
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "docintel").Logger()
	}
	return c, nil
}

// Analyze submits document for analysis with modelID and polls the operation
// until it succeeds, fails, is canceled, or the client timeout elapses.
func (c *Client) Analyze(ctx context.Context, modelID string, document []byte) (*AnalyzeResult, error) {
	if modelID == "" {
		modelID = DefaultModelID
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	operationURL, err := c.submit(ctx, modelID, document)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("model", modelID).Str("operation", operationURL).Msg("analyze request accepted")

	start := time.Now()
	for attempt := 1; ; attempt++ {
		op, wait, err := c.poll(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case StatusSucceeded:
			if op.AnalyzeResult == nil {
				return nil, &ResponseError{Message: "succeeded operation has no analyzeResult"}
			}
			c.log.Debug().
				Int("attempts", attempt).
				Int("pages", len(op.AnalyzeResult.Pages)).
				Dur("elapsed", time.Since(start)).
				Msg("analyze operation succeeded")
			return op.AnalyzeResult, nil
		case StatusFailed:
			opErr := &OperationError{Code: "Unknown", Message: "operation failed without error details"}
			if op.Error != nil {
				opErr.Code = op.Error.Code
				opErr.Message = op.Error.Message
			}
			return nil, opErr
		case StatusCanceled:
			return nil, &OperationError{Code: "Canceled", Message: "operation was canceled by the service"}
		}

		if wait <= 0 {
			wait = c.pollInterval
		}
		c.log.Debug().Str("status", op.Status).Int("attempt", attempt).Dur("wait", wait).Msg("analyze operation pending")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for analyze operation: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// ListModels lists the document models of the resource, following nextLink pages.
func (c *Client) ListModels(ctx context.Context) ([]ModelSummary, error) {
	next := fmt.Sprintf("%s/formrecognizer/documentModels?api-version=%s", c.endpoint, url.QueryEscape(c.apiVersion))

	var models []ModelSummary
	for next != "" {
		req, err := c.newRequest(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("list models request failed: %w", err)
		}
		body, err := readBody(resp)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, newAPIError(resp.StatusCode, body)
		}

		var page modelList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, &ResponseError{Message: "failed to decode model list", Cause: err}
		}
		models = append(models, page.Value...)
		next = page.NextLink
	}
	return models, nil
}

func (c *Client) submit(ctx context.Context, modelID string, document []byte) (string, error) {
	analyzeURL := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s",
		c.endpoint, url.PathEscape(modelID), url.QueryEscape(c.apiVersion))

	req, err := c.newRequest(ctx, http.MethodPost, analyzeURL, bytes.NewReader(document))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType(document))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyze request failed: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", newAPIError(resp.StatusCode, body)
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", &ResponseError{Message: "missing Operation-Location header"}
	}
	return operationURL, nil
}

func (c *Client) poll(ctx context.Context, operationURL string) (*AnalyzeOperation, time.Duration, error) {
	req, err := c.newRequest(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("poll analyze operation: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, newAPIError(resp.StatusCode, body)
	}

	if err := schemas.ValidateAnalyzeOperation(body); err != nil {
		return nil, 0, &ResponseError{Message: "analyze operation does not match schema", Cause: err}
	}

	var op AnalyzeOperation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, 0, &ResponseError{Message: "failed to decode analyze operation", Cause: err}
	}
	return &op, retryAfter(resp.Header), nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.apiKey)
	req.Header.Set(requestIDHeader, uuid.NewString())
	return req, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
		if parsed.Error.InnerError != nil && parsed.Error.InnerError.Code != "" {
			apiErr.Code = parsed.Error.InnerError.Code
		}
		return apiErr
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// retryAfter reads the Retry-After header as whole seconds.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func contentType(document []byte) string {
	detected := http.DetectContentType(document)
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	switch {
	case detected == "application/pdf", strings.HasPrefix(detected, "image/"):
		return detected
	}
	return "application/octet-stream"
}
