package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
)

type (
	Mark   string
	Winner string
	Status string
)

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

const (
	WinnerNone Winner = ""
	WinnerX    Winner = Winner(PlayerX)
	WinnerO    Winner = Winner(PlayerO)
	WinnerDraw Winner = "draw"
)

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

const BoardSize = 9

// WinCombos - rows, columns and diagonals, in the order they are checked.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Board [BoardSize]Mark

// GameState - a snapshot of a single game. Values are copied on read, so a
// snapshot handed to an observer never changes underneath it.
type GameState struct {
	Board         Board  `json:"board"`
	CurrentPlayer Mark   `json:"current_player"`
	Winner        Winner `json:"winner"`
	WinningLine   []int  `json:"winning_line"`
}

func NewGameState() GameState {
	return GameState{
		Board:         Board{},
		CurrentPlayer: PlayerX,
		Winner:        WinnerNone,
		WinningLine:   nil,
	}
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that Board) Count(mark Mark) int {
	var n int
	for _, cell := range that {
		if cell == mark {
			n++
		}
	}

	return n
}

// DetermineGameResult - returns the winner of the board and, for a won board,
// the first winning triple in WinCombos order.
func DetermineGameResult(board Board) (Winner, []int) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Winner(a), []int{combo[0], combo[1], combo[2]}
		}
	}

	// the game will continue until all the squares are full
	if board.IsFull() {
		return WinnerDraw, nil
	}

	return WinnerNone, nil
}

// MakeTurn - places the current player's mark on cell and recomputes the result.
// On error the state is left untouched.
func (that *GameState) MakeTurn(cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that.Board[cell] = that.CurrentPlayer

	winner, line := DetermineGameResult(that.Board)
	switch winner {
	// one player wins
	case WinnerX, WinnerO:
		that.Winner = winner
		that.WinningLine = line
	// tie
	case WinnerDraw:
		that.Winner = WinnerDraw
	// game continue
	default:
		that.CurrentPlayer = that.CurrentPlayer.Opponent()
	}

	return nil
}

func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that GameState) Clone() GameState {
	clone := that
	if that.WinningLine != nil {
		clone.WinningLine = append([]int(nil), that.WinningLine...)
	}

	return clone
}

func (that GameState) IsFinished() bool {
	return that.Winner != WinnerNone
}

func (that GameState) Status() Status {
	switch that.Winner {
	case WinnerX, WinnerO:
		return StatusWon
	case WinnerDraw:
		return StatusDraw
	default:
		return StatusInProgress
	}
}

// StatusMessage - the line shown above the board.
func (that GameState) StatusMessage() string {
	switch that.Status() {
	case StatusWon:
		return fmt.Sprintf("Player %s Wins!", that.Winner)
	case StatusDraw:
		return "It's a Draw!"
	default:
		return fmt.Sprintf("%s's Turn", that.CurrentPlayer)
	}
}

func (that GameState) IsWinningCell(cell int) bool {
	for _, idx := range that.WinningLine {
		if idx == cell {
			return true
		}
	}

	return false
}

// Celebrate reports whether the game ended with a winner rather than a draw.
func (that GameState) Celebrate() bool {
	return that.Status() == StatusWon
}
