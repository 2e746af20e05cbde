package storage

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-session/testing/suite"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	t.Run("Connects to a running server", func(t *testing.T) {
		ctx, st := suite.New(t)

		// When: a client is created for the container address
		client, err := NewRedisClient(ctx, st.Addr())

		// Then: the connection is usable
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		require.NoError(t, client.Ping(ctx).Err())
	})

	t.Run("Fails when nothing listens", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		// When: the address has no server behind it
		client, err := NewRedisClient(ctx, "127.0.0.1:1")

		// Then: an error is returned
		require.Error(t, err)
		require.Nil(t, client)
	})
}
