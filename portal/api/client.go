// Package api is the portal's client for the REST API. Failures come in three tiers:
// *TransportError when no usable answer arrived, *APIError for non-2xx answers,
// and nil results without error when a lookup finds nothing where that is a normal state.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	token   string
	rest    *rest.Client
}

// New returns a client for the API at baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		rest:    &rest.Client{HTTPClient: httpClient},
	}
}

// WithToken returns a copy of the client authenticating with token.
func (c *Client) WithToken(token string) *Client {
	cc := *c
	cc.token = token
	return &cc
}

// URL resolves an API path, such as an /uploads evidence path, to an absolute URL.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

func seg(s string) string { return url.PathEscape(s) }

func (c *Client) request(method rest.Method, path string, query map[string]string, body []byte, contentType string) rest.Request {
	headers := map[string]string{"Accept": "application/json"}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}
	return rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + path,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
	}
}

func (c *Client) send(ctx context.Context, req rest.Request) (*rest.Response, error) {
	op := string(req.Method) + " " + strings.TrimPrefix(req.BaseURL, c.baseURL)
	resp, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, []byte(resp.Body))
	}
	return resp, nil
}

// do sends in as JSON (when not nil) and decodes the answer into out (when not nil).
func (c *Client) do(ctx context.Context, method rest.Method, path string, query map[string]string, in, out interface{}) error {
	var body []byte
	contentType := ""
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return errors.Wrap(err, "encoding request")
		}
		contentType = "application/json"
	}

	resp, err := c.send(ctx, c.request(method, path, query, body, contentType))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err = decodeString(resp.Body, out); err != nil {
		return &TransportError{Op: string(method) + " " + path, Err: err}
	}
	return nil
}

func decodeString(body string, out interface{}) error {
	if err := json.NewDecoder(strings.NewReader(body)).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
