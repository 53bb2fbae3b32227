// Package thssdbwire is the TCP protocol of the ThssDB server: length-prefixed
// JSON frames carrying SQL scripts and their results.
package thssdbwire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/Chinwer/ThssDB/internal/sql/executor"
)

type ServerConfig struct {
	Addr string
	// IdleTimeout closes a connection that sends nothing for this long
	// (0 = never).
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

// SessionFunc returns the manager for a new connection. Each connection gets
// its own, so USE only affects the connection that issued it.
type SessionFunc func() executor.Manager

// Run listens on sc.Addr and serves until ctx is done. Open connections are
// closed on shutdown and Run waits for their handlers to return.
func Run(ctx context.Context, sc ServerConfig, newSession SessionFunc) error {
	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return fmt.Errorf("thssdbwire: listen: %w", err)
	}
	return Serve(ctx, ln, sc, newSession)
}

// Serve is Run over an existing listener. It takes ownership of ln.
func Serve(ctx context.Context, ln net.Listener, sc ServerConfig, newSession SessionFunc) error {
	log := sc.Logger
	if log == nil {
		log = slog.Default()
	}
	defer func() { _ = ln.Close() }()

	log.Info("thssdbwire: listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		conns = make(map[net.Conn]struct{})
	)
	defer func() {
		mu.Lock()
		for c := range conns {
			_ = c.Close()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("thssdbwire: shutting down")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn("thssdbwire: accept", "err", err)
			continue
		}

		mu.Lock()
		conns[conn] = struct{}{}
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				mu.Lock()
				delete(conns, conn)
				mu.Unlock()
			}()
			h := &connHandler{
				conn: conn,
				ex:   executor.NewExecutor(newSession(), log),
				idle: sc.IdleTimeout,
				log:  log.With("remote", conn.RemoteAddr().String()),
			}
			h.serve(ctx)
		}()
	}
}

type connHandler struct {
	conn net.Conn
	ex   *executor.Executor
	idle time.Duration
	log  *slog.Logger
}

func (h *connHandler) serve(ctx context.Context) {
	defer func() { _ = h.conn.Close() }()
	h.log.Debug("thssdbwire: connection opened")

	for ctx.Err() == nil {
		if h.idle > 0 {
			_ = h.conn.SetReadDeadline(time.Now().Add(h.idle))
		}

		var req ExecuteRequest
		if err := ReadFrame(h.conn, &req); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				h.log.Warn("thssdbwire: read request", "err", err)
			}
			h.log.Debug("thssdbwire: connection closed")
			return
		}

		resp := h.execute(ctx, req)
		if err := WriteFrame(h.conn, resp); err != nil {
			h.log.Warn("thssdbwire: write response", "id", req.ID, "err", err)
			return
		}
	}
}

func (h *connHandler) execute(ctx context.Context, req ExecuteRequest) ExecuteResponse {
	start := time.Now()
	results, err := h.ex.ExecSQL(ctx, req.SQL)

	resp := ExecuteResponse{ID: req.ID, Results: results}
	if err != nil {
		resp.Error = err.Error()
		h.log.Info("thssdbwire: request failed", "id", req.ID, "err", err)
	}
	h.log.Debug("thssdbwire: request done",
		"id", req.ID,
		"statements", len(results),
		"elapsed", time.Since(start),
	)
	return resp
}
