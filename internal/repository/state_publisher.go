package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
)

const publishTimeout = 2 * time.Second

// StatePublisher mirrors game snapshots to a Redis pub/sub channel. Nothing is
// stored: a renderer that subscribes late only sees the next change.
type StatePublisher struct {
	logger  *slog.Logger
	client  *redis.Client
	channel string

	// one slot, newest snapshot wins; drained by Run
	pending chan entity.GameState
}

func NewStatePublisher(logger *slog.Logger, client *redis.Client, channel string) *StatePublisher {
	return &StatePublisher{
		logger:  logger.With("component", "state_publisher"),
		client:  client,
		channel: channel,
		pending: make(chan entity.GameState, 1),
	}
}

func (that *StatePublisher) Publish(ctx context.Context, state entity.GameState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal game state: %w", err)
	}

	if err = that.client.Publish(ctx, that.channel, stateJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game state: %w", err)
	}

	return nil
}

// Observer - adapts Publish to a game controller subscription. It never
// blocks: the snapshot is queued for Run, replacing one not yet published.
func (that *StatePublisher) Observer() func(entity.GameState) {
	return func(state entity.GameState) {
		select {
		case that.pending <- state:
			return
		default:
		}

		select {
		case <-that.pending:
		default:
		}

		select {
		case that.pending <- state:
		default:
		}
	}
}

// Run - publishes queued snapshots until ctx is done. Failures are logged and
// do not affect the game.
func (that *StatePublisher) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	for {
		select {
		case <-ctx.Done():
			return
		case state := <-that.pending:
			publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := that.Publish(publishCtx, state); err != nil {
				log.Error("could not publish state", "channel", that.channel, "error", err)
			}
			cancel()
		}
	}
}

// Listen - subscribes to the channel and decodes snapshots until ctx is done.
func (that *StatePublisher) Listen(ctx context.Context) (<-chan entity.GameState, error) {
	log := that.logger.With("method", "Listen")

	pubsub := that.client.Subscribe(ctx, that.channel)

	// wait for the subscription to be confirmed, so no publish is missed after return
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", that.channel, err)
	}

	states := make(chan entity.GameState)

	go func() {
		defer close(states)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var state entity.GameState
				if err := json.Unmarshal([]byte(msg.Payload), &state); err != nil {
					log.Error("failed to unmarshal game state", "error", err)
					continue
				}

				select {
				case states <- state:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return states, nil
}
