/*
	Package transport provides the connection boundary between voxel accessors
	and a remote DVID-style server: a minimal request/response primitive, an
	implementation over net/http, and a wrapper that retries exchanges the
	server rejects because it is busy.

	A Connection is supplied by the caller and owned by the caller.  It is not
	safe for unsynchronized concurrent use by two accessor calls at once unless
	the underlying implementation guarantees it; this package adds no locking
	of its own.
*/
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one logical exchange with the server.
type Request struct {
	// Method is the HTTP method, e.g., "GET" or "POST".
	Method string

	// Path is the request path, e.g., "/api/node/3f8c/grayscale/info".
	Path string

	// Query holds optional query options like "throttle" and "compression".
	Query url.Values

	// ContentType is set on requests carrying a body.
	ContentType string

	// GetBody returns a fresh reader for the request body and may be called
	// once per send attempt, so a busy retry can replay the payload.  Nil for
	// requests without a body.
	GetBody func() (io.ReadCloser, error)
}

// String describes the attempted action for error messages and logs.
func (r *Request) String() string {
	if len(r.Query) == 0 {
		return r.Method + " " + r.Path
	}
	return r.Method + " " + r.Path + "?" + r.Query.Encode()
}

// Response is the server's answer to a Request.  Body streams and must be
// closed by the receiver.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Connection is a single request/response primitive to one server.
// Implementations attach whatever timeout bound the caller configured; on
// timeout the exchange fails and is not retried.
type Connection interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPConnection is a Connection over net/http to a fixed server address.
type HTTPConnection struct {
	addr   string
	client *http.Client
}

// NewHTTPConnection returns a connection to the given address, e.g.,
// "localhost:8000" or "http://myserver.test.com:8000".  If client is nil,
// a default http.Client with DefaultTimeout is used.
func NewHTTPConnection(addr string, client *http.Client) (*HTTPConnection, error) {
	if addr == "" {
		return nil, fmt.Errorf("server address must be non-empty")
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	if _, err := url.Parse(addr); err != nil {
		return nil, fmt.Errorf("bad server address %q: %w", addr, err)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPConnection{addr: strings.TrimSuffix(addr, "/"), client: client}, nil
}

// DefaultTimeout bounds each exchange when the caller supplies no http.Client.
const DefaultTimeout = 5 * time.Minute

// Addr returns the server address this connection talks to.
func (c *HTTPConnection) Addr() string {
	return c.addr
}

// Do performs one exchange.  The response body streams from the server and
// must be closed by the caller.
func (c *HTTPConnection) Do(ctx context.Context, req *Request) (*Response, error) {
	u := c.addr + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	var body io.ReadCloser
	if req.GetBody != nil {
		var err error
		if body, err = req.GetBody(); err != nil {
			return nil, fmt.Errorf("unable to get request body for %s: %w", req, err)
		}
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, err
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
