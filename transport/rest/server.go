package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
	"github.com/rocketscienceinc/tictactoe-session/internal/tictactoe"
	"go.opentelemetry.io/otel/trace"
)

const shutdownTimeout = 5 * time.Second

type gameController interface {
	State() entity.GameState
	TryMove(cell int) (entity.GameState, error)
	Reset()
	Subscribe(observer tictactoe.Observer) func()
}

type Server struct {
	logger *slog.Logger
	game   gameController
	tracer trace.Tracer

	heartbeat time.Duration
	mux       *http.ServeMux
}

func New(logger *slog.Logger, game gameController, tracer trace.Tracer) *Server {
	server := &Server{
		logger:    logger.With("component", "rest"),
		game:      game,
		tracer:    tracer,
		heartbeat: 15 * time.Second,
		mux:       http.NewServeMux(),
	}

	server.mux.HandleFunc("GET /ping", pingHandler)
	server.mux.HandleFunc("GET /state", server.handleState)
	server.mux.HandleFunc("POST /move", server.handleMove)
	server.mux.HandleFunc("POST /reset", server.handleReset)
	server.mux.HandleFunc("GET /events", server.handleEvents)

	return server
}

func (that *Server) Handler() http.Handler {
	return that.mux
}

// Start - serves HTTP on port until ctx is cancelled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
