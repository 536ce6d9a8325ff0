package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	// DefaultNotifyChannel is the Postgres channel the change triggers notify on
	DefaultNotifyChannel = "mpv_changes"
	defaultPingInterval  = 90 * time.Second
)

// notificationSource is the part of *pq.Listener used by PostgresListener
type notificationSource interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// PostgresListener forwards NOTIFY payloads emitted by the change triggers
// to a notifier. It catches writes made directly against the database.
type PostgresListener struct {
	source       notificationSource
	channel      string
	notifier     shared.ChangeNotifier
	logger       *zap.Logger
	pingInterval time.Duration
}

// NewPostgresListener opens a dedicated LISTEN connection. The connection is
// re-established automatically between rt.MinReconnect and rt.MaxReconnect.
func NewPostgresListener(db config.DatabaseConfig, rt config.RealtimeConfig, notifier shared.ChangeNotifier, logger *zap.Logger) *PostgresListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	minReconnect := rt.MinReconnect
	if minReconnect <= 0 {
		minReconnect = 10 * time.Second
	}
	maxReconnect := rt.MaxReconnect
	if maxReconnect < minReconnect {
		maxReconnect = minReconnect
	}

	listener := pq.NewListener(db.DSN(), minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info("Change listener connected")
		case pq.ListenerEventDisconnected:
			logger.Warn("Change listener disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			logger.Info("Change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("Change listener connection attempt failed", zap.Error(err))
		}
	})

	return newPostgresListener(listener, rt.Channel, notifier, logger)
}

func newPostgresListener(source notificationSource, channel string, notifier shared.ChangeNotifier, logger *zap.Logger) *PostgresListener {
	if channel == "" {
		channel = DefaultNotifyChannel
	}
	return &PostgresListener{
		source:       source,
		channel:      channel,
		notifier:     notifier,
		logger:       logger,
		pingInterval: defaultPingInterval,
	}
}

// Run listens until ctx is cancelled. It blocks and closes the connection on return.
func (l *PostgresListener) Run(ctx context.Context) error {
	defer func() {
		if err := l.source.Close(); err != nil {
			l.logger.Warn("Failed to close change listener", zap.Error(err))
		}
	}()

	if err := l.source.Listen(l.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}
	l.logger.Info("Listening for database changes", zap.String("channel", l.channel))

	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()

	notifications := l.source.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			// pq sends nil after a reconnect; anything raised while
			// disconnected is lost and clients catch up on their next fetch
			if n == nil {
				l.logger.Warn("Change listener resumed, notifications may have been missed")
				continue
			}
			l.forward(ctx, n.Extra)
		case <-ticker.C:
			go func() {
				if err := l.source.Ping(); err != nil {
					l.logger.Debug("Change listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}

func (l *PostgresListener) forward(ctx context.Context, payload string) {
	msg, err := decodeChange([]byte(payload))
	if err != nil {
		l.logger.Error("Failed to decode change notification",
			zap.String("payload", payload),
			zap.Error(err))
		return
	}
	if err := l.notifier.Publish(ctx, msg); err != nil {
		l.logger.Warn("Failed to forward change notification",
			zap.String("table", msg.Table),
			zap.Error(err))
	}
}
