package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamServer serves one scripted SSE response per connection and signals
// each accepted connection on conns.
type streamServer struct {
	*httptest.Server
	conns chan struct{}
}

func newStreamServer(t *testing.T, body func(conn int, r *http.Request, w http.ResponseWriter, flush func())) *streamServer {
	t.Helper()
	conns := make(chan struct{}, 16)
	var connCount int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn := int(atomic.AddInt32(&connCount, 1))
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		conns <- struct{}{}

		body(conn, r, w, flusher.Flush)
	}))
	t.Cleanup(srv.Close)
	return &streamServer{Server: srv, conns: conns}
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestClientDeliversMessages(t *testing.T) {
	srv := newStreamServer(t, func(conn int, r *http.Request, w http.ResponseWriter, flush func()) {
		fmt.Fprint(w, "data: {\"type\":\"connected\",\"timestamp\":\"2024-06-01T09:00:00Z\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"update\",\"data\":{\"event\":\"slot_created\"},\"timestamp\":\"2024-06-01T09:00:01Z\"}\n\n")
		flush()
		<-r.Context().Done()
	})

	events := make(chan Event, 8)
	opened := make(chan struct{}, 1)
	client := Connect(context.Background(), Config{
		URL:    srv.URL,
		Logger: zerolog.Nop(),
	}, Callbacks{
		OnOpen:    func() { opened <- struct{}{} },
		OnMessage: func(ev Event) { events <- ev },
	})
	defer client.Close()

	select {
	case <-opened:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for open")
	}

	ev := waitEvent(t, events)
	assert.Equal(t, "connected", ev.Type)

	ev = waitEvent(t, events)
	assert.Equal(t, "update", ev.Type)
	assert.JSONEq(t, `{"event":"slot_created"}`, string(ev.Data))
}

func TestClientSkipsUnparseableMessages(t *testing.T) {
	srv := newStreamServer(t, func(conn int, r *http.Request, w http.ResponseWriter, flush func()) {
		fmt.Fprint(w, "data: not json\n\n")
		fmt.Fprint(w, "data: {\"type\":\"heartbeat\",\"timestamp\":\"2024-06-01T09:00:30Z\"}\n\n")
		flush()
		<-r.Context().Done()
	})

	events := make(chan Event, 8)
	client := Connect(context.Background(), Config{
		URL:    srv.URL,
		Logger: zerolog.Nop(),
	}, Callbacks{
		OnMessage: func(ev Event) { events <- ev },
	})
	defer client.Close()

	// The garbage line is dropped without killing the connection; the next
	// message still arrives.
	ev := waitEvent(t, events)
	assert.Equal(t, "heartbeat", ev.Type)
}

func TestClientHandlesPayloadsPastDefaultScannerCap(t *testing.T) {
	// A single data line larger than bufio's 64KB default must not end the
	// connection.
	blob := strings.Repeat("x", 100*1024)
	srv := newStreamServer(t, func(conn int, r *http.Request, w http.ResponseWriter, flush func()) {
		fmt.Fprintf(w, "data: {\"type\":\"update\",\"data\":{\"blob\":%q},\"timestamp\":\"2024-06-01T09:00:00Z\"}\n\n", blob)
		flush()
		<-r.Context().Done()
	})

	events := make(chan Event, 8)
	errs := make(chan error, 8)
	client := Connect(context.Background(), Config{
		URL:    srv.URL,
		Logger: zerolog.Nop(),
	}, Callbacks{
		OnMessage: func(ev Event) { events <- ev },
		OnError:   func(err error) { errs <- err },
	})
	defer client.Close()

	ev := waitEvent(t, events)
	assert.Equal(t, "update", ev.Type)
	assert.Greater(t, len(ev.Data), 100*1024)

	select {
	case err := <-errs:
		t.Fatalf("connection dropped on large payload: %v", err)
	default:
	}
}

func TestClientIgnoresCommentsAndOtherFields(t *testing.T) {
	srv := newStreamServer(t, func(conn int, r *http.Request, w http.ResponseWriter, flush func()) {
		fmt.Fprint(w, ": keepalive comment\n")
		fmt.Fprint(w, "event: message\n")
		fmt.Fprint(w, "data: {\"type\":\"connected\",\"timestamp\":\"2024-06-01T09:00:00Z\"}\n\n")
		flush()
		<-r.Context().Done()
	})

	events := make(chan Event, 8)
	client := Connect(context.Background(), Config{
		URL:    srv.URL,
		Logger: zerolog.Nop(),
	}, Callbacks{
		OnMessage: func(ev Event) { events <- ev },
	})
	defer client.Close()

	ev := waitEvent(t, events)
	assert.Equal(t, "connected", ev.Type)
}

func TestClientReconnectsAfterDisconnect(t *testing.T) {
	srv := newStreamServer(t, func(conn int, r *http.Request, w http.ResponseWriter, flush func()) {
		fmt.Fprintf(w, "data: {\"type\":\"connected\",\"timestamp\":\"2024-06-01T09:00:0%dZ\"}\n\n", conn)
		flush()
		if conn == 1 {
			// First connection ends immediately, forcing a reconnect.
			return
		}
		<-r.Context().Done()
	})

	events := make(chan Event, 8)
	errs := make(chan error, 8)
	client := Connect(context.Background(), Config{
		URL:        srv.URL,
		RetryDelay: 20 * time.Millisecond,
		Logger:     zerolog.Nop(),
	}, Callbacks{
		OnMessage: func(ev Event) { events <- ev },
		OnError:   func(err error) { errs <- err },
	})
	defer client.Close()

	waitEvent(t, events)

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for disconnect error")
	}

	// The second connection is established and streams again.
	waitEvent(t, events)
	select {
	case <-srv.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first connection signal")
	}
	select {
	case <-srv.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reconnect")
	}
}

func TestClientRetriesOnBadStatus(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	errs := make(chan error, 8)
	client := Connect(context.Background(), Config{
		URL:        srv.URL,
		RetryDelay: 10 * time.Millisecond,
		Logger:     zerolog.Nop(),
	}, Callbacks{
		OnError: func(err error) { errs <- err },
	})
	defer client.Close()

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			assert.Contains(t, err.Error(), "unexpected status")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for retry error")
		}
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&hits), int32(2))
}

func TestClientCloseIsIdempotent(t *testing.T) {
	srv := newStreamServer(t, func(conn int, r *http.Request, w http.ResponseWriter, flush func()) {
		<-r.Context().Done()
	})

	client := Connect(context.Background(), Config{
		URL:    srv.URL,
		Logger: zerolog.Nop(),
	}, Callbacks{})

	select {
	case <-srv.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection")
	}

	client.Close()
	client.Close() // second call is a no-op
}

func TestClientStopsOnContextCancel(t *testing.T) {
	srv := newStreamServer(t, func(conn int, r *http.Request, w http.ResponseWriter, flush func()) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCalled := make(chan struct{}, 1)
	client := Connect(ctx, Config{
		URL:        srv.URL,
		RetryDelay: 10 * time.Millisecond,
		Logger:     zerolog.Nop(),
	}, Callbacks{
		OnError: func(err error) {
			select {
			case errCalled <- struct{}{}:
			default:
			}
		},
	})

	select {
	case <-srv.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection")
	}

	cancel()
	client.Close()

	// Cancellation is a shutdown, not a transport failure.
	select {
	case <-errCalled:
		t.Fatal("OnError fired for context cancellation")
	case <-time.After(50 * time.Millisecond):
	}
}
