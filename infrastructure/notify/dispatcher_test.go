package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backoffice/config"
	"backoffice/domain/sale"
	"backoffice/infrastructure/persistence"
	"backoffice/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	name  string
	err   error
	delay time.Duration

	mu       sync.Mutex
	received []Envelope
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(ctx context.Context, event string, body []byte) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	env, err := Decode(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.received = append(s.received, env)
	s.mu.Unlock()
	return s.err
}

func (s *recordingSink) events() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Envelope(nil), s.received...)
}

func paidEvent() *sale.SalePaidEvent {
	return sale.NewSalePaidEvent(12, 3, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
}

func TestDispatcherFansOutToEverySink(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	d := NewDispatcher(time.Second, a, b)

	d.Publish(context.Background(), paidEvent())
	d.Wait()

	for _, s := range []*recordingSink{a, b} {
		got := s.events()
		require.Len(t, got, 1, s.name)
		assert.Equal(t, sale.EventSalePaid, got[0].Event)
		assert.Equal(t, "12", got[0].AggregateID)
		assert.EqualValues(t, 12, got[0].Data["sale_id"])
		assert.NotEmpty(t, got[0].ID)
	}
	assert.Equal(t, []string{"a", "b"}, d.Sinks())
}

func TestDispatcherFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	broken := &recordingSink{name: "broken", err: errors.New("connection refused")}
	healthy := &recordingSink{name: "healthy"}
	d := NewDispatcher(time.Second, broken, healthy)

	// a cancelled caller context must not stop delivery
	ctx, cancel := context.WithCancel(persistence.ContextWithRequestID(context.Background(), "req-9"))
	cancel()
	d.Publish(ctx, paidEvent())
	d.Wait()

	assert.Len(t, healthy.events(), 1)
	failures := logs.FilterMessage("Event delivery failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "broken", failures[0].ContextMap()["sink"])
	assert.Equal(t, "req-9", failures[0].ContextMap()["request_id"])
}

func TestDispatcherTimeout(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	slow := &recordingSink{name: "slow", delay: time.Second}
	d := NewDispatcher(20*time.Millisecond, slow)

	d.Publish(context.Background(), paidEvent())
	d.Wait()

	assert.Empty(t, slow.events())
	assert.Equal(t, 1, logs.FilterMessage("Event delivery timed out").Len())
}

func TestDispatcherPublishAfterClose(t *testing.T) {
	s := &recordingSink{name: "a", delay: 5 * time.Millisecond}
	d := NewDispatcher(time.Second, s)

	var publishers sync.WaitGroup
	for i := 0; i < 8; i++ {
		publishers.Add(1)
		go func() {
			defer publishers.Done()
			for j := 0; j < 20; j++ {
				d.Publish(context.Background(), paidEvent())
			}
		}()
	}
	require.NoError(t, d.Close())
	publishers.Wait()

	delivered := len(s.events())
	d.Publish(context.Background(), paidEvent())
	d.Wait()
	assert.Equal(t, delivered, len(s.events()))
	assert.NoError(t, d.Close())
}

func TestDispatcherDropsInvalidEvents(t *testing.T) {
	s := &recordingSink{name: "a"}
	d := NewDispatcher(time.Second, s)

	d.Publish(context.Background(), namelessEvent{})
	d.Wait()
	assert.Empty(t, s.events())
}

type namelessEvent struct{}

func (namelessEvent) EventName() string       { return "" }
func (namelessEvent) OccurredOn() time.Time   { return time.Now() }
func (namelessEvent) GetAggregateID() string  { return "1" }
func (namelessEvent) Payload() map[string]any { return nil }

type fakeRedis struct {
	channel string
	message interface{}
	err     error
	closed  bool
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.message = message
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	}
	return cmd
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisSink(t *testing.T) {
	client := &fakeRedis{}
	s := newRedisSink(client, "sales_app")

	require.NoError(t, s.Deliver(context.Background(), "sale.paid", []byte(`{"id":"1"}`)))
	assert.Equal(t, "sales_app", client.channel)
	assert.Equal(t, []byte(`{"id":"1"}`), client.message)
	assert.NoError(t, s.Check(context.Background()))

	client.err = errors.New("down")
	assert.ErrorContains(t, s.Deliver(context.Background(), "sale.paid", nil), "down")
	assert.ErrorContains(t, s.Check(context.Background()), "down")

	d := NewDispatcher(time.Second, s)
	require.NoError(t, d.Close())
	assert.True(t, client.closed)
}

type fakeChannel struct {
	exchange string
	msg      amqp.Publishing
	closed   bool
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.msg = msg
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPSink(t *testing.T) {
	ch := &fakeChannel{}
	s := newAMQPSink(ch, "sales_app")

	require.NoError(t, s.Deliver(context.Background(), "sale.created", []byte("{}")))
	assert.Equal(t, "sales_app", ch.exchange)
	assert.Equal(t, "sale.created", ch.msg.Type)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)
	assert.NoError(t, s.Check(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Deliver(ctx, "sale.created", nil), context.Canceled)

	require.NoError(t, s.Close())
	assert.True(t, ch.closed)
}

func TestNewSinks(t *testing.T) {
	cfg := &config.NotifyConfig{
		Sinks: []string{"log", "outbox", "redis"},
		Redis: config.RedisConfig{Addr: "localhost:6379", Channel: "sales_app"},
	}
	sinks, err := NewSinks(cfg)
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	assert.Equal(t, "log", sinks[0].Name())
	assert.Equal(t, "redis", sinks[1].Name())
	_, probed := sinks[1].(Checker)
	assert.True(t, probed)
	_, probed = sinks[0].(Checker)
	assert.False(t, probed)

	_, err = NewSinks(&config.NotifyConfig{Sinks: []string{"kafka"}})
	assert.Error(t, err)
}
