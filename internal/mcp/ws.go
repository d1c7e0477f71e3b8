package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tkingovr/context-continuity/internal/jsonrpc"
)

// WSListener serves the same MCP session over WebSocket. Each connection gets
// its own router (handshake state is per client) and its messages are handled
// serially, so responses keep request order per connection just like stdio.
type WSListener struct {
	logger    *slog.Logger
	addr      string
	newRouter func() *Router
	upgrader  websocket.Upgrader
}

// NewWSListener creates a listener bound to addr. newRouter must return a
// fresh router per call.
func NewWSListener(logger *slog.Logger, addr string, newRouter func() *Router) *WSListener {
	return &WSListener{
		logger:    logger,
		addr:      addr,
		newRouter: newRouter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Listen runs the HTTP server until the context is canceled.
func (l *WSListener) Listen(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handle)

	srv := &http.Server{Addr: l.addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (l *WSListener) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	router := l.newRouter()
	ctx := r.Context()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		msg, err := jsonrpc.Parse(data)
		if err != nil {
			l.logger.Error("invalid message", "error", err)
			continue
		}
		resp := router.Handle(ctx, msg)
		if resp == nil {
			continue
		}
		out, err := jsonrpc.Marshal(resp)
		if err != nil {
			l.logger.Error("failed to marshal response", "error", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			l.logger.Error("websocket write failed", "error", err)
			return
		}
	}
}
