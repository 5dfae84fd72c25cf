package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shopmena/helpdesk/internal/observability"
)

// RedisPublisher pushes change events onto redis pub/sub channels so
// every gateway instance sees them.
type RedisPublisher struct {
	client  *redis.Client
	metrics *observability.Metrics
}

// NewRedisPublisher wraps a connected redis client.
func NewRedisPublisher(client *redis.Client, metrics *observability.Metrics) *RedisPublisher {
	return &RedisPublisher{client: client, metrics: metrics}
}

// Publish marshals the event and publishes it on its channel.
func (p *RedisPublisher) Publish(ctx context.Context, ev ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, ev.Channel, payload).Err(); err != nil {
		return err
	}
	p.metrics.RecordFeedEvent(string(ev.Kind), string(ev.Op))
	return nil
}

// RedisRelay consumes the redis channels and republishes into a local
// broker for websocket fan-out.
type RedisRelay struct {
	client *redis.Client
	broker *Broker
	logger *zap.Logger
}

// NewRedisRelay builds a relay between redis pub/sub and the broker.
func NewRedisRelay(client *redis.Client, broker *Broker, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{client: client, broker: broker, logger: logger}
}

// Run blocks consuming messages until ctx is cancelled. A dropped redis
// connection surfaces as a delivery gap, not an error: go-redis
// reconnects the pub/sub and events published meanwhile are lost, which
// clients recover from by refetching on remount.
func (r *RedisRelay) Run(ctx context.Context) {
	pubsub := r.client.PSubscribe(ctx, ChannelTickets, "ticket:*", "notifications:*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.logger.Warn("malformed feed event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			ev.Channel = msg.Channel
			_ = r.broker.Publish(ctx, ev)
		}
	}
}
