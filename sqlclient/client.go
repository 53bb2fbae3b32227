// Package sqlclient talks to a ThssDB server over the thssdbwire protocol.
package sqlclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Chinwer/ThssDB/internal/sql/executor"
	"github.com/Chinwer/ThssDB/server/thssdbwire"
)

// ServerError is a failure reported by the server. Results holds the
// statements of the script that completed before the failure.
type ServerError struct {
	Msg     string
	Results []executor.Result
}

func (e *ServerError) Error() string { return e.Msg }

// Client is a synchronous client. Exec may be called from several goroutines;
// requests are serialized on the connection.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
	id   atomic.Uint64

	rwTimeout time.Duration
}

func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialContext(context.Background(), addr, timeout)
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sqlclient: dial %s: %w", addr, err)
	}
	return &Client{conn: c}, nil
}

// SetRWTimeout sets the deadline applied to each Exec whose context has none.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c == nil {
		return
	}
	c.rwTimeout = d
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Exec(sql string) ([]executor.Result, error) {
	return c.ExecContext(context.Background(), sql)
}

// ExecContext sends one script and waits for its results. A server-side
// failure is returned as *ServerError.
func (c *Client) ExecContext(ctx context.Context, sql string) ([]executor.Result, error) {
	if c == nil || c.conn == nil {
		return nil, errors.New("sqlclient: nil client")
	}

	reqID := c.id.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.applyDeadline(ctx); err != nil {
		return nil, err
	}
	// an idle connection must not expire
	defer func() { _ = c.conn.SetDeadline(time.Time{}) }()

	if err := thssdbwire.WriteFrame(c.conn, thssdbwire.ExecuteRequest{ID: reqID, SQL: sql}); err != nil {
		return nil, fmt.Errorf("sqlclient: send: %w", err)
	}

	var resp thssdbwire.ExecuteResponse
	if err := thssdbwire.ReadFrame(c.conn, &resp); err != nil {
		return nil, fmt.Errorf("sqlclient: receive: %w", err)
	}
	if resp.ID != reqID {
		return nil, fmt.Errorf("sqlclient: response id mismatch: got=%d want=%d", resp.ID, reqID)
	}
	if resp.Error != "" {
		return resp.Results, &ServerError{Msg: resp.Error, Results: resp.Results}
	}
	return resp.Results, nil
}

func (c *Client) applyDeadline(ctx context.Context) error {
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.rwTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.rwTimeout))
	}
	return nil
}
