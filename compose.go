package datasvc

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint path templates on the data service.
const (
	selfPath   = "/self"
	configPath = "/config"
	propsPath  = "/props"
	listPath   = "/list"
	writePath  = "/write"
)

// compose joins the root URL, an endpoint template, and an optional
// caller path, then reparses the result. A string that does not parse
// as a URL fails here, before any request is sent, with an error
// wrapping [ErrInvalidTarget]. The returned URL is the one every error
// for the request reports.
func (c *Client) compose(endpoint, sub string) (*url.URL, error) {
	raw := c.root + endpoint
	if sub != "" {
		raw += "/" + strings.TrimLeft(sub, "/")
	}

	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTarget, raw, err)
	}

	return target, nil
}
