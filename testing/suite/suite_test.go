package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	// Given: a suite with a running container
	ctx, st := New(t)

	// Then: the returned client is the one that passed the readiness check
	require.NoError(t, st.Storage.Ping(ctx).Err())
	assert.NotEmpty(t, st.Addr())
	assert.LessOrEqual(t, st.Storage.PoolStats().TotalConns, uint32(1))
}
