package tictactoe

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
)

// Observer receives the new snapshot after every state change.
type Observer func(state entity.GameState)

type subscription struct {
	id       uint64
	observer Observer
}

// GameController owns the state of one game session. Moves and resets are
// serialised; observers run synchronously under the same lock and must not
// call MakeMove, TryMove or Reset.
type GameController struct {
	logger *slog.Logger

	mu        sync.Mutex
	state     entity.GameState
	observers []subscription
	nextID    uint64
}

func NewGameController(logger *slog.Logger) *GameController {
	return &GameController{
		logger: logger.With("component", "game_controller"),
		state:  entity.NewGameState(),
	}
}

// State - returns a read-only snapshot of the current game.
func (that *GameController) State() entity.GameState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Clone()
}

// MakeMove - plays the current player's mark on cell. Invalid moves are ignored.
func (that *GameController) MakeMove(cell int) {
	if _, err := that.TryMove(cell); err != nil {
		that.logger.Debug("move ignored", "cell", cell, "reason", err)
	}
}

// TryMove - same as MakeMove, but reports why a move was rejected. The
// returned snapshot is the state right after this call, accepted or not.
func (that *GameController) TryMove(cell int) (entity.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	next := that.state.Clone()
	if err := next.MakeTurn(cell); err != nil {
		return that.state.Clone(), err
	}

	that.state = next

	that.logger.Debug("move accepted",
		"cell", cell,
		"player", that.state.Board[cell],
		"status", that.state.Status(),
	)

	if that.state.IsFinished() {
		that.logger.Info("game finished", "winner", that.state.Winner, "line", that.state.WinningLine)
	}

	that.notify()

	return that.state.Clone(), nil
}

// Reset - replaces the state with a new game.
func (that *GameController) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state = entity.NewGameState()
	that.logger.Debug("game reset")

	that.notify()
}

// Subscribe - registers an observer and returns a function removing it.
func (that *GameController) Subscribe(observer Observer) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID
	that.observers = append(that.observers, subscription{id: id, observer: observer})

	var once sync.Once

	return func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			for i, sub := range that.observers {
				if sub.id == id {
					that.observers = append(that.observers[:i:i], that.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// notify must be called with mu held.
func (that *GameController) notify() {
	for _, sub := range that.observers {
		sub.observer(that.state.Clone())
	}
}
