package rest

import "github.com/rocketscienceinc/tictactoe-session/internal/entity"

type MoveRequest struct {
	Index *int `json:"index"`
}

// StateResponse - a game snapshot plus the fields the page derives from it.
type StateResponse struct {
	Board         entity.Board  `json:"board"`
	CurrentPlayer entity.Mark   `json:"current_player"`
	Winner        entity.Winner `json:"winner"`
	WinningLine   []int         `json:"winning_line"`
	Status        entity.Status `json:"status"`
	Message       string        `json:"message"`
	Celebrate     bool          `json:"celebrate"`
}

type ErrorResponse struct {
	Error string         `json:"error"`
	State *StateResponse `json:"state,omitempty"`
}

func newStateResponse(state entity.GameState) *StateResponse {
	return &StateResponse{
		Board:         state.Board,
		CurrentPlayer: state.CurrentPlayer,
		Winner:        state.Winner,
		WinningLine:   state.WinningLine,
		Status:        state.Status(),
		Message:       state.StatusMessage(),
		Celebrate:     state.Celebrate(),
	}
}
