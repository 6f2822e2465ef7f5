package context_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infracontext "github.com/jonesrussell/north-cloud/link-review/infrastructure/context"
)

func TestWithPingTimeout_FollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, done := infracontext.WithPingTimeout(parent)
	defer done()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(infracontext.PingTimeout), deadline, time.Second)

	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestWithShutdownTimeout_SurvivesParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()

	ctx, done := infracontext.WithShutdownTimeout(parent)
	defer done()

	require.NoError(t, ctx.Err())
	_, ok := ctx.Deadline()
	assert.True(t, ok)
}
