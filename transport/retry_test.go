package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// stubConn scripts a sequence of status codes and records invocations.
type stubConn struct {
	statuses []int
	bodies   []string
	calls    int
}

func (s *stubConn) Do(ctx context.Context, req *Request) (*Response, error) {
	if s.calls >= len(s.statuses) {
		return nil, errors.New("stub exhausted")
	}
	status := s.statuses[s.calls]
	body := ""
	if s.calls < len(s.bodies) {
		body = s.bodies[s.calls]
	}
	s.calls++
	return &Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

func newTestClient(conn Connection, policy RetryPolicy) (*Client, *[]time.Duration) {
	client := NewClient(conn, policy)
	var delays []time.Duration
	client.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return client, &delays
}

func TestBusyThenSuccess(t *testing.T) {
	conn := &stubConn{statuses: []int{503, 503, 200}, bodies: []string{"", "", "voxels"}}
	client, delays := newTestClient(conn, RetryPolicy{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Second})

	resp, err := client.Do(context.Background(), &Request{Method: "GET", Path: "/api/test"})
	if err != nil {
		t.Fatalf("expected success after busy retries, got %v\n", err)
	}
	defer resp.Body.Close()
	if conn.calls != 3 {
		t.Errorf("expected 3 attempts, got %d\n", conn.calls)
	}
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "voxels" {
		t.Errorf("got wrong body after retries: %q\n", string(b))
	}
	if len(*delays) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d\n", len(*delays))
	}
	for i := 1; i < len(*delays); i++ {
		if (*delays)[i] < (*delays)[i-1] {
			t.Errorf("backoff delays decreased: %v\n", *delays)
		}
	}
}

func TestBackoffCappedAtMaxDelay(t *testing.T) {
	conn := &stubConn{statuses: []int{503, 503, 503, 503, 503, 200}}
	client, delays := newTestClient(conn, RetryPolicy{
		MaxAttempts:  10,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     25 * time.Millisecond,
	})

	resp, err := client.Do(context.Background(), &Request{Method: "GET", Path: "/api/test"})
	if err != nil {
		t.Fatalf("expected success, got %v\n", err)
	}
	resp.Body.Close()
	want := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		25 * time.Millisecond,
		25 * time.Millisecond,
		25 * time.Millisecond,
	}
	if len(*delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v\n", len(want), *delays)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Errorf("delay %d: expected %s, got %s\n", i, want[i], (*delays)[i])
		}
	}
}

func TestNonBusyErrorNotRetried(t *testing.T) {
	conn := &stubConn{statuses: []int{400}, bodies: []string{"bad bounds"}}
	client, delays := newTestClient(conn, RetryPolicy{})

	_, err := client.Do(context.Background(), &Request{Method: "GET", Path: "/api/test"})
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v\n", err)
	}
	if remoteErr.StatusCode != 400 || remoteErr.Reason != "bad bounds" {
		t.Errorf("bad RemoteError contents: %+v\n", remoteErr)
	}
	if conn.calls != 1 {
		t.Errorf("non-busy error should fail on first attempt, saw %d attempts\n", conn.calls)
	}
	if len(*delays) != 0 {
		t.Errorf("non-busy error should not back off, slept %v\n", *delays)
	}
}

func TestRetryExhausted(t *testing.T) {
	conn := &stubConn{statuses: []int{503, 503, 503}}
	client, _ := newTestClient(conn, RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Second})

	_, err := client.Do(context.Background(), &Request{Method: "POST", Path: "/api/test"})
	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected RetryExhaustedError, got %v\n", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("expected 3 attempts before giving up, got %d\n", exhausted.Attempts)
	}
	if conn.calls != 3 {
		t.Errorf("expected 3 invocations, got %d\n", conn.calls)
	}
}

func TestCanceledDuringBackoff(t *testing.T) {
	conn := &stubConn{statuses: []int{503, 200}}
	client := NewClient(conn, RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Do(ctx, &Request{Method: "GET", Path: "/api/test"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from backoff sleep, got %v\n", err)
	}
	if conn.calls != 1 {
		t.Errorf("expected no further attempts after cancellation, got %d\n", conn.calls)
	}
}
