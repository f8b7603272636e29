package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"auriga-hq/tracewire/pkg/config"
	"auriga-hq/tracewire/pkg/correlation"
	"auriga-hq/tracewire/pkg/headers"
	"auriga-hq/tracewire/pkg/tracing"
)

// Client is an HTTP client that carries correlation across service
// boundaries. Each outbound request gets a client span, the W3C trace
// context, and the correlation ID read back off the active request
// span, without ever overriding headers the caller set explicitly.
type Client struct {
	http        *http.Client
	cfg         config.ClientConfig
	correlation *correlation.Manager
	policy      headers.CapturePolicy
	logger      *slog.Logger
}

// New creates a correlated client wrapping httpClient. A nil httpClient
// uses http.DefaultClient.
func New(cfg config.Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:        httpClient,
		cfg:         cfg.Client,
		correlation: correlation.NewManager(cfg.Tracing.Correlation),
		policy: headers.CapturePolicy{
			Allow:    cfg.Client.CaptureHeaders,
			Patterns: cfg.Client.HeaderPatterns,
			Redact:   cfg.Client.RedactHeaders,
		},
		logger: logger,
	}
}

// Do sends the request with correlation and trace context attached.
// When the client is disabled by configuration the request passes
// through untouched.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if !c.cfg.ClientEnabled() {
		return c.http.Do(req)
	}

	ctx, span := otel.Tracer("auriga-hq/tracewire").Start(req.Context(),
		req.Method+" "+req.URL.Host,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()
	req = req.WithContext(ctx)

	c.attachCorrelation(ctx, req, span)
	tracing.Inject(ctx, req.Header)

	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.String()),
	)
	c.captureHeaders(span, req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}

// attachCorrelation copies the active request's correlation ID onto the
// outbound request. Headers already set by the caller win.
func (c *Client) attachCorrelation(ctx context.Context, req *http.Request, span trace.Span) {
	id := tracing.CorrelationIDFromContext(ctx)
	if id == "" {
		return
	}
	for name, value := range c.correlation.PropagationHeaders(id) {
		if req.Header.Get(name) == "" {
			req.Header.Set(name, value)
		}
	}
	span.SetAttributes(attribute.String(tracing.AttrCorrelationID, id))
}

// captureHeaders records outbound headers selected by the client's
// capture policy, redacting sensitive values.
func (c *Client) captureHeaders(span trace.Span, h http.Header) {
	for name, values := range h {
		if len(values) == 0 || !c.policy.ShouldCapture(name) {
			continue
		}
		span.SetAttributes(attribute.String(
			headers.AttributeKey(name),
			c.policy.CaptureValue(name, values[0]),
		))
	}
}

// Get issues a GET request to url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post issues a POST request to url with the given body.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(req)
}

// Put issues a PUT request to url with the given body.
func (c *Client) Put(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(req)
}

// Delete issues a DELETE request to url.
func (c *Client) Delete(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}
