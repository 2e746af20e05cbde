package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
	"github.com/rocketscienceinc/tictactoe-session/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-session/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const receiveTimeout = 5 * time.Second

func receive(t *testing.T, states <-chan entity.GameState) entity.GameState {
	t.Helper()

	select {
	case state, ok := <-states:
		require.True(t, ok, "listener closed")
		return state
	case <-time.After(receiveTimeout):
		t.Fatal("no state received")
		return entity.GameState{}
	}
}

func TestStatePublisher_Publish(t *testing.T) {
	ctx, st := suite.New(t)

	publisher := NewStatePublisher(st.Logger, st.Storage, "tictactoe:test")

	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Given: a listener on the channel
	states, err := publisher.Listen(listenCtx)
	require.NoError(t, err)

	// When: a won game is published
	published := entity.GameState{
		Board:         entity.Board{entity.PlayerX, entity.PlayerO, entity.EmptyCell, entity.PlayerX, entity.PlayerO, entity.EmptyCell, entity.PlayerX},
		CurrentPlayer: entity.PlayerX,
		Winner:        entity.WinnerX,
		WinningLine:   []int{0, 3, 6},
	}
	require.NoError(t, publisher.Publish(ctx, published))

	// Then: the listener decodes the same snapshot
	assert.Equal(t, published, receive(t, states))
}

func TestStatePublisher_Observer(t *testing.T) {
	ctx, st := suite.New(t)

	publisher := NewStatePublisher(st.Logger, st.Storage, "tictactoe:observer")

	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	states, err := publisher.Listen(listenCtx)
	require.NoError(t, err)

	go publisher.Run(listenCtx)

	// Given: a controller mirrored to redis
	controller := tictactoe.NewGameController(st.Logger)
	controller.Subscribe(publisher.Observer())

	// When: a move is made
	controller.MakeMove(4)

	// Then: its snapshot arrives
	first := receive(t, states)
	assert.Equal(t, entity.PlayerX, first.Board[4])
	assert.Equal(t, entity.PlayerO, first.CurrentPlayer)

	// When: the game is reset
	controller.Reset()

	// Then: the reset arrives too
	second := receive(t, states)
	assert.Equal(t, entity.NewGameState(), second)
}

func TestStatePublisher_ListenStopsOnCancel(t *testing.T) {
	ctx, st := suite.New(t)

	publisher := NewStatePublisher(st.Logger, st.Storage, "tictactoe:cancel")

	listenCtx, cancel := context.WithCancel(ctx)

	// Given: an active listener
	states, err := publisher.Listen(listenCtx)
	require.NoError(t, err)

	// When: its context is cancelled
	cancel()

	// Then: the channel is closed
	select {
	case _, ok := <-states:
		assert.False(t, ok)
	case <-time.After(receiveTimeout):
		t.Fatal("listener was not closed")
	}
}

func TestStatePublisher_ObserverDoesNotBlockGame(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	// Given: a publisher whose redis address never answers
	client := redis.NewClient(&redis.Options{
		Addr:        "10.255.255.1:6379",
		DialTimeout: publishTimeout,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	publisher := NewStatePublisher(logger, client, "tictactoe:unreachable")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go publisher.Run(ctx)

	controller := tictactoe.NewGameController(logger)
	controller.Subscribe(publisher.Observer())

	// When: several moves are played while the first publish is still stuck dialing
	start := time.Now()
	controller.MakeMove(0)
	controller.MakeMove(4)
	controller.MakeMove(8)
	state := controller.State()
	elapsed := time.Since(start)

	// Then: the game never waited on redis
	assert.Less(t, elapsed, 100*time.Millisecond)
	assert.Equal(t, entity.PlayerX, state.Board[8])
}

func TestStatePublisher_ObserverKeepsNewest(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	publisher := NewStatePublisher(logger, nil, "tictactoe:queue")
	observe := publisher.Observer()

	// Given: nothing is draining the queue
	first := entity.NewGameState()
	second := entity.NewGameState()
	second.Board[4] = entity.PlayerX

	// When: two snapshots are observed
	observe(first)
	observe(second)

	// Then: only the newest is pending
	require.Len(t, publisher.pending, 1)
	assert.Equal(t, second, <-publisher.pending)
}
