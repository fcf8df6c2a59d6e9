package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/realtime"
)

const defaultRedisPrefix = "neurobots:lesson-events"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Channel is the key prefix; each SSE channel is published under
	// "<Channel>:<sse channel>".
	Channel string
}

// redisBus publishes every run on its own Redis channel and forwards all of
// them through one pattern subscription, so any replica can serve the SSE
// stream for a run started on another.
type redisBus struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("missing REDIS_ADDR")
	}
	prefix := strings.TrimRight(strings.TrimSpace(cfg.Channel), ":")
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	log.Info("redis lesson bus connected", "addr", addr, "prefix", prefix)
	return &redisBus{log: log.With("service", "RedisLessonBus"), rdb: rdb, prefix: prefix}, nil
}

func (b *redisBus) topic(channel string) string { return b.prefix + ":" + channel }

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if msg.Channel == "" {
		return errors.New("message has no channel")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode lesson event: %w", err)
	}
	return b.rdb.Publish(ctx, b.topic(msg.Channel), raw).Err()
}

// StartForwarder subscribes before returning, so nothing published after it
// returns is missed. Delivery stops when ctx ends.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	sub := b.rdb.PSubscribe(ctx, b.topic("*"))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				if msg, ok := b.decode(m); ok {
					onMsg(msg)
				}
			}
		}
	}()
	return nil
}

// decode trusts the Redis channel over the payload's own channel field.
func (b *redisBus) decode(m *goredis.Message) (realtime.SSEMessage, bool) {
	var msg realtime.SSEMessage
	if m == nil {
		return msg, false
	}
	if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
		b.log.Warn("bad lesson event payload", "redis_channel", m.Channel, "error", err)
		return msg, false
	}
	if ch, found := strings.CutPrefix(m.Channel, b.prefix+":"); found && ch != "" {
		msg.Channel = ch
	}
	return msg, true
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
