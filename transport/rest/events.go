package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
)

// handleEvents - streams a snapshot on connect and after every state change
// as server-sent events.
func (that *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleEvents")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// the stream outlives the server write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not clear write deadline", "error", err)
	}

	// one slot, newest snapshot wins: observers run under the game lock and must not block
	updates := make(chan entity.GameState, 1)
	unsubscribe := that.game.Subscribe(func(state entity.GameState) {
		select {
		case updates <- state:
			return
		default:
		}

		select {
		case <-updates:
		default:
		}

		select {
		case updates <- state:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, that.game.State()); err != nil {
		log.Debug("client gone", "error", err)
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(that.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-updates:
			if err := writeEvent(w, state); err != nil {
				log.Debug("client gone", "error", err)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, state entity.GameState) error {
	payload, err := json.Marshal(newStateResponse(state))
	if err != nil {
		return fmt.Errorf("could not marshal state: %w", err)
	}

	if _, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
		return fmt.Errorf("could not write event: %w", err)
	}

	return nil
}
