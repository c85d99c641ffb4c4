package datasvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/perivale/datasvc/stream"
	"github.com/perivale/datasvc/throttle"
)

// Client issues typed requests against a data service root URL. It is
// immutable after [Build] and safe for concurrent use; a single call
// issues exactly one request and awaits exactly one response.
type Client struct {
	c       *http.Client
	root    string
	headers []Header
	logger  *slog.Logger
	tracer  trace.Tracer
}

// rootTarget carries the root URL through validation.
type rootTarget struct {
	RootURL string `json:"rootUrl" validate:"required,url"`
}

// Build creates a Client for the data service at rootURL. The root
// must be an absolute URL; trailing slashes are trimmed so composition
// is stable. A bad root fails here, never at request time.
func Build(rootURL string, optFns ...Option) (*Client, error) {
	if err := Validate(rootTarget{RootURL: rootURL}); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTarget, rootURL, err)
	}

	client := &Client{
		c:      &http.Client{},
		root:   strings.TrimRight(rootURL, "/"),
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("no-op tracer"),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	client.headers = opts.headers

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Self retrieves the service's description of the caller.
func (c *Client) Self(ctx context.Context) (SelfResponse, error) {
	return fetchTyped[SelfResponse](ctx, c, "datasvc.self", selfPath, "")
}

// Config retrieves the configuration record held by the service.
func (c *Client) Config(ctx context.Context) (Config, error) {
	return fetchTyped[Config](ctx, c, "datasvc.config", configPath, "")
}

// Props retrieves the metadata record for path.
func (c *Client) Props(ctx context.Context, path string) (Metadata, error) {
	return fetchTyped[Metadata](ctx, c, "datasvc.props", propsPath, path)
}

// FolderProps retrieves the metadata record for a folder path. The
// service serves files and folders from the same endpoint, so this is
// [Client.Props] under a name that reads right at folder call sites.
func (c *Client) FolderProps(ctx context.Context, path string) (Metadata, error) {
	return c.Props(ctx, path)
}

// PropsAndStatus retrieves the props endpoint through the raw capture
// path: the literal body text paired with the status code. A non-2xx
// status is not an error here; the body is replaced with the same
// message the unified error would carry, and interpretation shifts to
// the caller. Only a failure to complete the exchange returns an error.
func (c *Client) PropsAndStatus(ctx context.Context, path string) (GenericResponse[string], error) {
	var out GenericResponse[string]

	target, err := c.compose(propsPath, path)
	if err != nil {
		return out, err
	}

	ctx, span := c.startSpan(ctx, "datasvc.props_status", target)
	defer span.End()

	req, err := c.request(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return out, err
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return out, fmt.Errorf("dispatch http do: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	out.StatusCode = resp.StatusCode

	if !successClass(resp.StatusCode) {
		statusErr := &UnexpectedStatusError{
			URI:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Err:        ErrUnexpectedStatusCode,
		}
		out.Response = statusErr.Error()

		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			c.logger.Error("failed to discard unused body", "error", err)
		}

		return out, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("reading response body: %w", err)
	}
	out.Response = string(raw)

	return out, nil
}

// FileList retrieves the full listing under path as one decoded
// sequence. For listings too large to buffer, use
// [Client.StreamFileList].
func (c *Client) FileList(ctx context.Context, path string) ([]Metadata, error) {
	return fetchTyped[[]Metadata](ctx, c, "datasvc.list", listPath, path)
}

// StreamFileList retrieves the listing under path as a lazy stream.
// Elements decode one at a time as the consumer pulls them, so body
// bytes are read incrementally and a slow consumer applies natural
// backpressure. The returned stream owns the response body; the caller
// must drain it or call Close. A non-2xx status returns the unified
// error immediately and no stream.
func (c *Client) StreamFileList(ctx context.Context, path string) (*MetadataStream, error) {
	target, err := c.compose(listPath, path)
	if err != nil {
		return nil, err
	}

	ctx, span := c.startSpan(ctx, "datasvc.stream_list", target)
	defer span.End()

	req, err := c.request(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dispatch http do: %w", err)
	}

	if !successClass(resp.StatusCode) {
		defer func() {
			if err := resp.Body.Close(); err != nil {
				c.logger.Error("failed to close response body", "error", err)
			}
		}()

		return nil, c.statusError(req, resp)
	}

	return stream.New[Metadata](resp.Body, c.logger), nil
}

// WriteFolder serializes items, posts them to the write endpoint as
// multipart form field "meta", and returns the first element of the
// echoed sequence. The service echoes the processed records with the
// subject record first; an empty echo is an error wrapping
// [ErrEmptyResponse].
func (c *Client) WriteFolder(ctx context.Context, items []Metadata) (Metadata, error) {
	var zero Metadata

	target, err := c.compose(writePath, "")
	if err != nil {
		return zero, err
	}

	ctx, span := c.startSpan(ctx, "datasvc.write", target)
	defer span.End()

	payload, err := marshalMetadataList(items)
	if err != nil {
		return zero, fmt.Errorf("encoding metadata payload: %w", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("meta", string(payload)); err != nil {
		return zero, fmt.Errorf("writing form field: %w", err)
	}
	if err := form.Close(); err != nil {
		return zero, fmt.Errorf("closing form writer: %w", err)
	}

	req, err := c.request(ctx, http.MethodPost, target, &body, form.FormDataContentType())
	if err != nil {
		return zero, err
	}

	var out Metadata
	err = c.dispatch(req, func(resp *http.Response) error {
		echoed, err := decodeBody[[]Metadata](resp.Body)
		if err != nil {
			return err
		}

		if len(echoed) == 0 {
			return fmt.Errorf("%w: write endpoint echoed no metadata", ErrEmptyResponse)
		}
		out = echoed[0]

		return nil
	})
	if err != nil {
		return zero, err
	}

	return out, nil
}

// UserFolder resolves the caller's user folder from the self
// description, using the field named by cfg.NamespaceUserField. Every
// failure mode folds into a *UserFolderError so callers can fall back
// without special-casing the cause: a failed self call, an invalid
// configuration, and a missing field all read the same way.
func (c *Client) UserFolder(ctx context.Context, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", &UserFolderError{Err: err}
	}

	self, err := c.Self(ctx)
	if err != nil {
		return "", &UserFolderError{Err: err}
	}

	folder, err := self.First(cfg.NamespaceUserField)
	if err != nil {
		return "", &UserFolderError{Err: err}
	}

	return folder, nil
}
