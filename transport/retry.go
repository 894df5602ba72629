package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/thatcher/pydvid/dvid"
)

// RetryPolicy bounds how long a Client keeps retrying exchanges the server
// answers with the busy signal (503 Service Unavailable, as produced by
// server-side throttling).  Delays grow exponentially from InitialDelay,
// doubling each attempt, and are capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy is used when a caller passes a zero RetryPolicy.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  5,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

func (p RetryPolicy) isZero() bool {
	return p.MaxAttempts == 0 && p.InitialDelay == 0 && p.MaxDelay == 0
}

// maxReasonBytes limits how much of an error response body is kept for the
// RemoteError reason.
const maxReasonBytes = 2048

// Client wraps a Connection with busy-signal retry.  Only the busy status is
// retried; any other non-success response is surfaced immediately so genuine
// errors on non-idempotent writes are never replayed.
type Client struct {
	conn   Connection
	policy RetryPolicy

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient returns a retrying client over the given connection.  A zero
// policy selects DefaultRetryPolicy.
func NewClient(conn Connection, policy RetryPolicy) *Client {
	if policy.isZero() {
		policy = DefaultRetryPolicy
	}
	return &Client{conn: conn, policy: policy, sleep: sleepCtx}
}

// Conn returns the underlying connection.
func (c *Client) Conn() Connection {
	return c.conn
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do performs one logical exchange, replaying it with backoff while the
// server reports busy.  A successful (2xx) response is returned with its body
// still streaming; everything else is an error:
//
//   - network or context errors pass through untouched and are not retried
//   - a non-busy error status yields a *RemoteError after one attempt
//   - a busy status on every attempt yields a *RetryExhaustedError
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	delay := c.policy.InitialDelay
	for attempt := 1; ; attempt++ {
		resp, err := c.conn.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			reason := readReason(resp.Body)
			resp.Body.Close()
			return nil, &RemoteError{Action: req.String(), StatusCode: resp.StatusCode, Reason: reason}
		}

		// Server is busy.  Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if attempt >= c.policy.MaxAttempts {
			return nil, &RetryExhaustedError{Action: req.String(), Attempts: attempt}
		}
		dvid.Debugf("Server busy on attempt %d of %s, retrying in %s...\n", attempt, req, delay)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
		if delay > c.policy.MaxDelay {
			delay = c.policy.MaxDelay
		}
	}
}

func readReason(body io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(body, maxReasonBytes))
	if err != nil || len(b) == 0 {
		return "(no message)"
	}
	return string(b)
}
