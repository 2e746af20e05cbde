package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxBodySize = 1 << 10

func (that *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, newStateResponse(that.game.State()))
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleMove")

	_, span := that.tracer.Start(r.Context(), "game.move")
	defer span.End()

	var req MoveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		span.SetStatus(codes.Error, "bad request body")
		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Index == nil {
		span.SetStatus(codes.Error, "index missing")
		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "index is required"})
		return
	}

	span.SetAttributes(attribute.Int("game.cell", *req.Index))

	state, err := that.game.TryMove(*req.Index)

	span.SetAttributes(
		attribute.Bool("game.move.accepted", err == nil),
		attribute.String("game.status", string(state.Status())),
	)

	switch {
	case err == nil:
		that.writeJSON(w, http.StatusOK, newStateResponse(state))
	case errors.Is(err, apperror.ErrInvalidCell):
		log.Debug("move rejected", "cell", *req.Index, "error", err)
		that.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), State: newStateResponse(state)})
	case errors.Is(err, apperror.ErrCellOccupied), errors.Is(err, apperror.ErrGameFinished):
		log.Debug("move rejected", "cell", *req.Index, "error", err)
		that.writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), State: newStateResponse(state)})
	default:
		log.Error("unexpected move error", "cell", *req.Index, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		that.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (that *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_, span := that.tracer.Start(r.Context(), "game.reset")
	defer span.End()

	that.game.Reset()

	that.writeJSON(w, http.StatusOK, newStateResponse(that.game.State()))
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
