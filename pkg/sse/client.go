package sse

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRetryDelay is the fixed wait between reconnect attempts. Retry is
// unconditional: no backoff growth, no attempt cap, no jitter.
const DefaultRetryDelay = 3 * time.Second

// maxLineSize bounds a single stream line. Updates carry one appointment or
// slot, so this is generous.
const maxLineSize = 4 * 1024 * 1024

// Event is one parsed message from the stream. Data is left raw so callers
// decode the update payload into their own types.
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Callbacks are invoked from the client's reader goroutine. Nil entries are
// skipped.
type Callbacks struct {
	OnOpen    func()
	OnMessage func(Event)
	OnError   func(error)
}

type Config struct {
	URL        string
	RetryDelay time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client maintains a streaming connection to an event endpoint, reconnecting
// with a fixed delay whenever the transport fails.
type Client struct {
	url        string
	retryDelay time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
	cb         Callbacks

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

// Connect opens the stream and starts the reader goroutine. The returned
// client keeps reconnecting until Close is called or ctx is cancelled.
func Connect(ctx context.Context, cfg Config, cb Callbacks) *Client {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Client{
		url:        cfg.URL,
		retryDelay: cfg.RetryDelay,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger.With().Str("component", "sse_client").Logger(),
		cb:         cb,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go c.run(ctx)
	return c
}

// Close cancels any pending reconnect and tears down the transport. Safe to
// call multiple times.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	<-c.done
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	for {
		err := c.stream(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil && c.cb.OnError != nil {
			c.cb.OnError(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retryDelay):
		}
	}
}

// stream runs one connection to completion. Any return with a non-nil error
// means the transport reached a terminal state and a reconnect is due.
func (c *Client) stream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if c.cb.OnOpen != nil {
		c.cb.OnOpen()
	}

	scanner := bufio.NewScanner(resp.Body)
	// Default scanner cap is 64KB per line; a large update payload would
	// kill the connection with ErrTooLong.
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				c.dispatch(data.Bytes())
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// Other SSE fields and comments are ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return fmt.Errorf("stream closed by server")
}

// dispatch parses one message. An unparseable payload is logged and skipped;
// it never terminates the connection.
func (c *Client) dispatch(payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		c.logger.Warn().Err(err).Str("payload", string(payload)).Msg("discarding unparseable message")
		return
	}
	if c.cb.OnMessage != nil {
		c.cb.OnMessage(event)
	}
}
