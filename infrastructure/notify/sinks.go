package notify

import (
	"context"
	"fmt"
	"strings"

	"backoffice/config"

	"github.com/redis/go-redis/v9"
)

// Checker is implemented by sinks holding a connection worth probing.
type Checker interface {
	Check(ctx context.Context) error
}

// NewSink builds one sink by its config name.
func NewSink(name string, cfg *config.NotifyConfig) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "log":
		return LogSink{}, nil
	case "redis":
		return NewRedisSink(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Channel), nil
	case "amqp":
		return NewAMQPSink(cfg.AMQP.URL, cfg.AMQP.Exchange)
	default:
		return nil, fmt.Errorf("unknown notify sink %q", name)
	}
}

// NewSinks builds every sink listed in cfg.Sinks. "outbox" is not a sink:
// it switches on transactional persistence in the unit of work and is skipped here.
func NewSinks(cfg *config.NotifyConfig) ([]Sink, error) {
	sinks := make([]Sink, 0, len(cfg.Sinks))
	for _, name := range cfg.Sinks {
		if strings.EqualFold(strings.TrimSpace(name), "outbox") {
			continue
		}
		s, err := NewSink(name, cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
