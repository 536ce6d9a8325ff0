package realtime

import (
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewNotifier returns a Redis notifier when Redis is configured and reachable,
// otherwise an in-process notifier. The second result reports whether Redis is used.
func NewNotifier(redisCfg config.RedisConfig, rt config.RealtimeConfig, logger *zap.Logger) (shared.ChangeNotifier, bool) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !redisCfg.Enabled() {
		return NewLocalNotifier(logger), false
	}

	notifier, err := NewRedisNotifier(redisCfg,
		WithRedisChannel(rt.RedisChannel),
		WithRedisLogger(logger),
	)
	if err != nil {
		logger.Warn("Redis unavailable, change feed limited to this process", zap.Error(err))
		return NewLocalNotifier(logger), false
	}
	return notifier, true
}
