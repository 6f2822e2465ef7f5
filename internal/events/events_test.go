package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/events"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

var ts = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func audit(id int64, kind domain.AuditKind, text string) domain.AuditEvent {
	return domain.AuditEvent{
		Kind:         kind,
		HistoryEvent: domain.HistoryEvent{RecordID: id, Timestamp: ts, Text: text, Actor: "analyst-1"},
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Name() string { return "broken" }

func (f *failingSink) Send(context.Context, []events.Envelope) error {
	f.calls++
	return errors.New("boom")
}

type recordingSink struct{ got [][]events.Envelope }

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Send(_ context.Context, envs []events.Envelope) error {
	r.got = append(r.got, envs)
	return nil
}

func TestFanout_SendsToEverySinkAndCountsOutcomes(t *testing.T) {
	t.Parallel()

	tp := telemetry.NewProvider(prometheus.NewRegistry())
	broken := &failingSink{}
	rec := &recordingSink{}
	var nilStream *events.StreamPublisher

	f := events.NewFanout(infralogger.NewNop(), tp, broken, nil, nilStream, rec)
	assert.Equal(t, 2, f.Len())

	f.Publish(context.Background(), []domain.AuditEvent{
		audit(4, domain.AuditStatus, "Updated to Verified"),
		audit(4, domain.AuditFlag, "Flagged"),
	})
	f.Publish(context.Background(), nil)

	assert.Equal(t, 1, broken.calls, "empty batches are not sent")
	require.Len(t, rec.got, 1)
	require.Len(t, rec.got[0], 2)
	assert.Equal(t, int64(4), rec.got[0][0].RecordID)
	assert.Equal(t, domain.AuditFlag, rec.got[0][1].Kind)
	assert.NotEqual(t, rec.got[0][0].EventID, rec.got[0][1].EventID)

	assert.InDelta(t, 1, testutil.ToFloat64(tp.Metrics.EventsPublished.WithLabelValues("broken", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(tp.Metrics.EventsPublished.WithLabelValues("recording", "ok")), 0)
}

func TestStreamPublisher_AppendsInOrder(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pub := events.NewStreamPublisher(client, events.StreamConfig{Stream: "audit-test"}, nil, infralogger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	pub.Start(ctx)

	f := events.NewFanout(infralogger.NewNop(), nil, pub)
	f.Publish(context.Background(), []domain.AuditEvent{audit(9, domain.AuditStatus, "Marked as False Positive")})
	f.Publish(context.Background(), []domain.AuditEvent{audit(9, domain.AuditNote, "called registrar")})

	cancel()
	select {
	case <-pub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stream worker did not drain")
	}

	entries, err := mr.Stream("audit-test")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	values := map[string]string{}
	for i := 0; i+1 < len(entries[0].Values); i += 2 {
		values[entries[0].Values[i]] = entries[0].Values[i+1]
	}
	assert.Equal(t, "9", values["record_id"])
	assert.Equal(t, "status", values["kind"])

	var env events.Envelope
	require.NoError(t, json.Unmarshal([]byte(values["event"]), &env))
	assert.Equal(t, "Marked as False Positive", env.Text)
	assert.Equal(t, "analyst-1", env.Actor)
	assert.True(t, ts.Equal(env.Timestamp))

	assert.Contains(t, entries[1].Values, "note")
}

func TestStreamPublisher_QueueFull(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pub := events.NewStreamPublisher(client, events.StreamConfig{QueueSize: 1}, nil, infralogger.NewNop())
	env := []events.Envelope{events.NewEnvelope(audit(1, domain.AuditFlag, "Flagged"))}

	require.NoError(t, pub.Send(context.Background(), env))
	require.ErrorIs(t, pub.Send(context.Background(), env), events.ErrQueueFull)
}

func TestStreamPublisher_NilIsNoOp(t *testing.T) {
	t.Parallel()

	pub := events.NewStreamPublisher(nil, events.StreamConfig{}, nil, infralogger.NewNop())
	assert.Nil(t, pub)
	require.NoError(t, pub.Send(context.Background(), nil))
	pub.Start(context.Background())
}

func TestFeed_PublishesToSubscribers(t *testing.T) {
	t.Parallel()

	broker := sse.NewBroker(infralogger.NewNop(), sse.Config{})
	require.NoError(t, broker.Start(context.Background()))
	t.Cleanup(func() { _ = broker.Stop() })

	filter, err := events.RecordFilter("7")
	require.NoError(t, err)
	ch, unsubscribe, err := broker.Subscribe(context.Background(), filter)
	require.NoError(t, err)
	t.Cleanup(unsubscribe)

	f := events.NewFanout(infralogger.NewNop(), nil, events.NewFeed(broker))
	f.Publish(context.Background(), []domain.AuditEvent{
		audit(3, domain.AuditFlag, "Flagged"),
		audit(7, domain.AuditLabel, "Override label: Gambling → Fraud. Reason: bank clone"),
	})

	select {
	case e := <-ch:
		assert.Equal(t, "audit.label", e.Type)
		env, ok := e.Data.(events.Envelope)
		require.True(t, ok)
		assert.Equal(t, int64(7), env.RecordID)
		assert.Equal(t, env.EventID.String(), e.ID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestRecordFilter(t *testing.T) {
	t.Parallel()

	filter, err := events.RecordFilter("")
	require.NoError(t, err)
	assert.Nil(t, filter)

	for _, bad := range []string{"abc", "0", "-2"} {
		_, err = events.RecordFilter(bad)
		require.Error(t, err, bad)
	}
}
