// Package probe checks the record source on a cron schedule so fetch metrics
// stay current and outages are logged before an analyst hits them.
package probe

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	infracontext "github.com/jonesrussell/north-cloud/link-review/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
)

// Checker fetches from the record source once.
type Checker interface {
	CheckSource(ctx context.Context) error
}

// Prober runs Checker on a schedule and logs reachability changes.
type Prober struct {
	cron    *cron.Cron
	checker Checker
	log     infralogger.Logger

	mu        sync.Mutex
	checked   bool
	reachable bool
}

// New schedules checks with a standard cron spec or descriptor such as
// "@every 1m". Overlapping runs are skipped.
func New(spec string, checker Checker, log infralogger.Logger) (*Prober, error) {
	cl := cronLogger{log: log}
	p := &Prober{
		cron:    cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		checker: checker,
		log:     log,
	}
	if _, err := p.cron.AddFunc(spec, func() { p.Probe(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", spec, err)
	}
	return p, nil
}

// Start runs the schedule until ctx ends.
func (p *Prober) Start(ctx context.Context) {
	p.cron.Start()
	go func() {
		<-ctx.Done()
		p.Stop()
	}()
}

// Stop halts the schedule and waits for a running probe.
func (p *Prober) Stop() {
	<-p.cron.Stop().Done()
}

// Probe checks the source once.
func (p *Prober) Probe(ctx context.Context) {
	ctx, cancel := infracontext.WithPingTimeout(ctx)
	defer cancel()

	err := p.checker.CheckSource(ctx)

	p.mu.Lock()
	changed := !p.checked || p.reachable != (err == nil)
	p.checked, p.reachable = true, err == nil
	p.mu.Unlock()

	switch {
	case err != nil && changed:
		p.log.Warn("Record source unreachable", infralogger.Error(err))
	case err == nil && changed:
		p.log.Info("Record source reachable")
	}
}

// Reachable reports the last probe outcome and whether any probe ran.
func (p *Prober) Reachable() (reachable, checked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reachable, p.checked
}

type cronLogger struct {
	log infralogger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, infralogger.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, infralogger.Error(err), infralogger.Any("details", keysAndValues))
}
