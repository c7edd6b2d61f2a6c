// Package backend talks to the discussion backend: it opens the streamed
// discussion requests and wraps the small JSON endpoints around them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseURL = "http://127.0.0.1:5000"

// StreamTransport opens a discussion stream. The returned body carries
// line-delimited frames and must be closed by the caller.
type StreamTransport interface {
	Stream(ctx context.Context, endpoint string, body any) (io.ReadCloser, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	streams    StreamTransport
}

type ClientOption func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithStreamTransport routes discussion streams through transport instead of
// plain HTTP. The JSON endpoints keep using HTTP.
func WithStreamTransport(transport StreamTransport) ClientOption {
	return func(c *Client) {
		c.streams = transport
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream posts body to endpoint and returns the streamed response body.
//
// Non-success responses are returned as *StatusError. Cancelling ctx aborts
// the request, including reads from the returned body.
func (c *Client) Stream(ctx context.Context, endpoint string, body any) (io.ReadCloser, error) {
	if c.streams != nil {
		return c.streams.Stream(ctx, endpoint, body)
	}

	ctx, span := tracer.Start(ctx, "open discussion stream")
	defer span.End()
	span.SetAttributes(attribute.String("request.endpoint", endpoint))

	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		err := newStatusError(resp)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return resp.Body, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	requestBodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	return resp, nil
}

// postJSON posts body and decodes the JSON response into out, when out is
// not nil.
func (c *Client) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
