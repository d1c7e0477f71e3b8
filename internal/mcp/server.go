package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tkingovr/context-continuity/api"
	"github.com/tkingovr/context-continuity/internal/jsonrpc"
)

// Server is the stdio transport: it reads newline-delimited JSON-RPC messages,
// routes them, and writes responses in request order. One message is fully
// resolved before the next line is read; responses to requests are written
// exactly once, notifications never receive one.
type Server struct {
	logger *slog.Logger
	router *Router
	in     io.Reader
	out    io.Writer
}

// NewServer creates a stdio server reading from in and writing to out.
func NewServer(logger *slog.Logger, router *Router, in io.Reader, out io.Writer) *Server {
	return &Server{
		logger: logger,
		router: router,
		in:     in,
		out:    out,
	}
}

// Run processes messages until the input stream ends or the context is
// canceled. A malformed line or a fault inside one message is logged to the
// diagnostic stream and never terminates the loop.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB max message

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := s.handleLine(ctx, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// handleLine resolves one message. Only a write failure on the protocol
// stream is returned; everything else is contained here.
func (s *Server) handleLine(ctx context.Context, line []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("recovered from fault handling message", "panic", rec)
			err = nil
		}
	}()

	msg, perr := jsonrpc.Parse(line)
	if perr != nil {
		// Framing error: no request id to respond to, so log and skip.
		s.logger.Error("invalid message", "error", perr)
		return nil
	}

	resp := s.router.Handle(ctx, msg)
	if resp == nil {
		return nil
	}
	return s.writeMessage(resp)
}

// writeMessage serializes one response followed by a newline. The output is
// unbuffered, so each response is visible to the client immediately.
func (s *Server) writeMessage(msg *api.JSONRPCMessage) error {
	data, err := jsonrpc.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	if _, err := s.out.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}
