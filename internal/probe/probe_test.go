package probe_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/probe"
)

type scriptedChecker struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (c *scriptedChecker) CheckSource(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("probe context has no deadline")
	}
	err := c.errs[c.calls%len(c.errs)]
	c.calls++
	return err
}

func TestProbe_TracksReachability(t *testing.T) {
	checker := &scriptedChecker{errs: []error{nil, errors.New("refused"), nil}}
	p, err := probe.New("@every 1h", checker, infralogger.NewNop())
	require.NoError(t, err)

	_, checked := p.Reachable()
	assert.False(t, checked)

	p.Probe(context.Background())
	reachable, checked := p.Reachable()
	assert.True(t, checked)
	assert.True(t, reachable)

	p.Probe(context.Background())
	reachable, _ = p.Reachable()
	assert.False(t, reachable)

	p.Probe(context.Background())
	reachable, _ = p.Reachable()
	assert.True(t, reachable)
	assert.Equal(t, 3, checker.calls)
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := probe.New("every minute please", &scriptedChecker{errs: []error{nil}}, infralogger.NewNop())
	require.Error(t, err)
}

func TestStartStop(t *testing.T) {
	p, err := probe.New("*/5 * * * *", &scriptedChecker{errs: []error{nil}}, infralogger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.Stop()
}
