package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/xbusd/internal/logging"
)

// Conn is a self-healing TCP connection to a serial bridge. Received
// bytes are delivered as raw chunks on the out channel; writes go to
// whatever connection is currently up.
type Conn struct {
	addr         string
	out          chan<- []byte
	reconnect    time.Duration
	reconnectMax time.Duration
	bufSize      int
	dialTimeout  time.Duration
	readTimeout  time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// Option configures a Conn.
type Option func(*Conn)

// WithReconnectInterval sets the base delay between reconnect attempts.
func WithReconnectInterval(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.reconnect = d
		}
	}
}

// WithReconnectMax caps the reconnect backoff.
func WithReconnectMax(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.reconnectMax = d
		}
	}
}

// WithReadBufferSize sets the per-read chunk size.
func WithReadBufferSize(n int) Option {
	return func(c *Conn) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// WithDialTimeout sets the connect timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// WithReadTimeout sets the per-read deadline. Zero means no deadline.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// Dial starts a connection to addr and keeps it alive until ctx is
// cancelled. Received chunks are copies; the caller owns them. The out
// channel is closed when the connection loop exits.
func Dial(ctx context.Context, addr string, out chan<- []byte, opts ...Option) *Conn {
	c := &Conn{
		addr:         addr,
		out:          out,
		reconnect:    1 * time.Second,
		reconnectMax: 30 * time.Second,
		bufSize:      4 * 1024,
		dialTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run(ctx)
	return c
}

// Write sends data to the device. It fails when no connection is up;
// callers retry at their own cadence.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return net.ErrClosed
	}
	_, err := conn.Write(data)
	return err
}

func (c *Conn) run(ctx context.Context) {
	defer close(c.out)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := net.DialTimeout("tcp", c.addr, c.dialTimeout)
		if err != nil {
			logging.Warn("Bridge dial failed",
				zap.String("addr", c.addr), zap.Error(err))
			attempt++
			c.sleepBackoff(ctx, attempt)
			continue
		}

		logging.LogConnection(c.addr, "connected")
		c.setConn(conn)

		attempt = 0
		err = c.readLoop(ctx, conn)
		c.setConn(nil)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logging.Warn("Bridge connection lost",
				zap.String("addr", c.addr), zap.Error(err))
		}
		c.sleepBackoff(ctx, 1)
	}
}

func (c *Conn) setConn(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Conn) readLoop(ctx context.Context, conn net.Conn) error {
	buf := make([]byte, c.bufSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case c.out <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				continue
			}
			return err
		}
	}
}

func (c *Conn) sleepBackoff(ctx context.Context, attempt int) {
	wait := min(c.reconnect*time.Duration(attempt), c.reconnectMax)
	timer := time.NewTimer(wait)
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	timer.Stop()
}
