package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultCloseTimeout = 5 * time.Second
	// DefaultRedisChannel is the pub/sub channel used when none is configured
	DefaultRedisChannel = "mpvestiario:changes"
)

// RedisNotifier implements shared.ChangeNotifier using Redis Pub/Sub, so that
// every server replica sees changes committed by any other.
type RedisNotifier struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisNotifierOption is a functional option for configuring the notifier
type RedisNotifierOption func(*RedisNotifier)

// WithRedisChannel sets the Pub/Sub channel name
func WithRedisChannel(channel string) RedisNotifierOption {
	return func(n *RedisNotifier) {
		if channel != "" {
			n.channel = channel
		}
	}
}

// WithRedisLogger sets the logger for the notifier
func WithRedisLogger(logger *zap.Logger) RedisNotifierOption {
	return func(n *RedisNotifier) {
		n.logger = logger
	}
}

// NewRedisNotifier connects to Redis and creates a notifier that owns the client
func NewRedisNotifier(cfg config.RedisConfig, opts ...RedisNotifierOption) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	n := NewRedisNotifierWithClient(client, opts...)
	n.ownsClient = true
	return n, nil
}

// NewRedisNotifierWithClient creates a notifier on an existing Redis client.
// The caller retains ownership of the client.
func NewRedisNotifierWithClient(client *redis.Client, opts ...RedisNotifierOption) *RedisNotifier {
	n := &RedisNotifier{
		client:  client,
		channel: DefaultRedisChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Publish sends a change message to all subscribers
func (n *RedisNotifier) Publish(ctx context.Context, msg shared.ChangeMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal change message: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		n.logger.Error("Failed to publish change message",
			zap.String("channel", n.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish change message: %w", err)
	}

	n.logger.Debug("Published change message",
		zap.String("table", msg.Table),
		zap.String("action", string(msg.Action)),
		zap.String("id", msg.ID.String()))
	return nil
}

// Subscribe listens for change messages until ctx is cancelled or the
// notifier is closed. It blocks.
func (n *RedisNotifier) Subscribe(ctx context.Context, callback func(msg shared.ChangeMessage)) error {
	n.mu.Lock()
	if n.isRunning {
		n.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	n.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	n.cancelFn = cancel
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.isRunning = false
		n.mu.Unlock()
		n.markDone()
	}()

	pubsub := n.client.Subscribe(subCtx, n.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	n.logger.Info("Subscribed to change channel", zap.String("channel", n.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			n.logger.Info("Change subscription stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				n.logger.Warn("Change channel closed")
				return nil
			}
			change, err := decodeChange([]byte(msg.Payload))
			if err != nil {
				n.logger.Error("Failed to decode change message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			deliver(n.logger, callback, change)
		}
	}
}

func (n *RedisNotifier) markDone() {
	n.doneOnce.Do(func() {
		close(n.doneCh)
	})
}

// Close stops the subscription and closes the client if the notifier owns it
func (n *RedisNotifier) Close() error {
	n.mu.Lock()
	cancelFn := n.cancelFn
	n.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-n.doneCh:
		case <-time.After(defaultCloseTimeout):
			n.logger.Warn("Timeout waiting for change subscription to stop")
		}
	}

	if n.ownsClient {
		return n.client.Close()
	}
	return nil
}

// Ensure RedisNotifier implements shared.ChangeNotifier
var _ shared.ChangeNotifier = (*RedisNotifier)(nil)
