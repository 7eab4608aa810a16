// Package client sends commands to a board over a serial link and waits for
// its ACCEPTED/REJECT answer.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"uniled/host/logging"
	"uniled/protocol"
)

// DefaultTimeout bounds the wait for a response
const DefaultTimeout = 2 * time.Second

// eofRetry is how long the reader waits after a read timeout before reading again
const eofRetry = 10 * time.Millisecond

var (
	// ErrRejected wraps every REJECT response
	ErrRejected = errors.New("command rejected")

	// ErrTimeout is returned when no response arrives in time
	ErrTimeout = errors.New("timed out waiting for response")

	// ErrClosed is returned after Close or once the link has failed
	ErrClosed = errors.New("client closed")
)

// Client owns a serial link. One reader goroutine splits the incoming bytes
// into lines; Send writes a command and returns the next response line.
type Client struct {
	port    io.ReadWriteCloser
	timeout time.Duration
	logger  *slog.Logger

	lines chan string
	done  chan struct{}
	wg    sync.WaitGroup

	sendMu    sync.Mutex
	closeOnce sync.Once
	readErr   error
	errMu     sync.Mutex
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets how long Send waits for a response
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger replaces the client logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New wraps port and starts the reader goroutine. Close stops it.
func New(port io.ReadWriteCloser, opts ...Option) *Client {
	c := &Client{
		port:    port,
		timeout: DefaultTimeout,
		logger:  logging.GetLogger("client"),
		lines:   make(chan string, 16),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.wg.Add(1)
	go c.readLoop()
	return c
}

// Send writes line and waits for its response. A REJECT response is
// returned together with an error wrapping ErrRejected.
func (c *Client) Send(ctx context.Context, line string) (protocol.Response, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	select {
	case <-c.done:
		return protocol.Response{}, c.closedErr()
	default:
	}

	line = strings.TrimSpace(line)
	c.drain()

	c.logger.Debug("Sending command", "command", line)
	if _, err := io.WriteString(c.port, line+"\n"); err != nil {
		return protocol.Response{}, fmt.Errorf("write %q: %w", line, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return protocol.Response{}, ctx.Err()
		case <-timer.C:
			return protocol.Response{}, fmt.Errorf("%q: %w", line, ErrTimeout)
		case <-c.done:
			return protocol.Response{}, c.closedErr()
		case raw, ok := <-c.lines:
			if !ok {
				return protocol.Response{}, c.closedErr()
			}
			resp, err := protocol.ParseResponse(raw)
			if err != nil {
				c.logger.Debug("Ignoring unexpected line", "line", raw)
				continue
			}
			c.logger.Debug("Received response", "response", raw)
			if err := resp.Err(); err != nil {
				return resp, fmt.Errorf("%w: %w", ErrRejected, err)
			}
			return resp, nil
		}
	}
}

// Close stops the reader and closes the port
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.port.Close()
		c.wg.Wait()
	})
	return err
}

// drain drops lines nobody asked for, such as late responses
func (c *Client) drain() {
	for {
		select {
		case raw, ok := <-c.lines:
			if !ok {
				return
			}
			c.logger.Debug("Dropping stale line", "line", raw)
		default:
			return
		}
	}
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	defer close(c.lines)

	buf := make([]byte, 256)
	var pending []byte

	for {
		select {
		case <-c.done:
			return
		default:
		}

		n, err := c.port.Read(buf)
		for _, b := range buf[:n] {
			if b != '\n' {
				pending = append(pending, b)
				continue
			}
			line := strings.TrimSpace(string(pending))
			pending = pending[:0]
			if line == "" {
				continue
			}
			select {
			case c.lines <- line:
			case <-c.done:
				return
			}
		}

		if err != nil {
			// A serial read timeout surfaces as EOF
			if errors.Is(err, io.EOF) {
				select {
				case <-c.done:
					return
				case <-time.After(eofRetry):
				}
				continue
			}
			c.setReadErr(err)
			return
		}
	}
}

func (c *Client) setReadErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	select {
	case <-c.done:
		// Closing the port unblocks Read with an error; that is not a failure
	default:
		c.logger.Warn("Serial read failed", "error", err)
		c.readErr = err
	}
}

func (c *Client) closedErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.readErr != nil {
		return fmt.Errorf("%w: %w", ErrClosed, c.readErr)
	}
	return ErrClosed
}
