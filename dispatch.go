package datasvc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// responseFn operates on a response whose status is in the 2xx class.
type responseFn func(resp *http.Response) error

// request instantiates an *http.Request against target. Default
// headers are merged in order, a request ID is stamped when the caller
// supplied none, and trace propagation headers are injected last.
func (c *Client) request(ctx context.Context, method string, target *url.URL, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for _, h := range c.headers {
		req.Header.Add(h.Key, h.Value)
	}

	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", uuid.New().String())
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

// dispatch fires the request and branches on status class before any
// decoding happens. A 2xx response is handed to fn with the body still
// unread; anything else becomes the unified status error. The body is
// drained and closed here regardless of outcome.
func (c *Client) dispatch(req *http.Request, fn responseFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch http do: %w", err)
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if !successClass(resp.StatusCode) {
		return c.statusError(req, resp)
	}

	if err := fn(resp); err != nil {
		discardBody = false
		return err
	}

	return nil
}

// statusError is the single construction site for non-2xx outcomes.
// The error body is read in full; the service's error bodies are the
// diagnostic.
func (c *Client) statusError(req *http.Request, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = []byte("unable to read body")
	}

	return &UnexpectedStatusError{
		URI:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Err:        ErrUnexpectedStatusCode,
	}
}

func successClass(code int) bool {
	return code >= 200 && code < 300
}

// decodeBody reads the full body and unmarshals it into T. On a shape
// mismatch it returns the zero value and a *DecodeError carrying the
// raw text, never a partially populated T.
func decodeBody[T any](body io.Reader) (T, error) {
	var zero T

	raw, err := io.ReadAll(body)
	if err != nil {
		return zero, fmt.Errorf("reading response body: %w", err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, &DecodeError{
			Body: string(raw),
			Err:  fmt.Errorf("%w: %w", ErrDecodeFailed, err),
		}
	}

	return v, nil
}

// fetchTyped composes the target, opens a span, and runs a GET through
// the dispatch funnel with a typed decode of the response body.
func fetchTyped[T any](ctx context.Context, c *Client, op, endpoint, sub string) (T, error) {
	var zero T

	target, err := c.compose(endpoint, sub)
	if err != nil {
		return zero, err
	}

	ctx, span := c.startSpan(ctx, op, target)
	defer span.End()

	req, err := c.request(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return zero, err
	}

	var out T
	err = c.dispatch(req, func(resp *http.Response) error {
		v, err := decodeBody[T](resp.Body)
		if err != nil {
			return err
		}
		out = v

		return nil
	})
	if err != nil {
		return zero, err
	}

	return out, nil
}

// startSpan opens a span for one operation and records the target path.
func (c *Client) startSpan(ctx context.Context, name string, target *url.URL) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("path", target.Path))

	return ctx, span
}
