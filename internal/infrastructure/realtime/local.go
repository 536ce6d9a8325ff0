// Package realtime distributes row change notifications to connected clients.
//
// Messages come from two sources: domain events raised by the services
// (EventBridge) and Postgres NOTIFY triggers for writes made outside the
// service (PostgresListener). They are fanned out in-process (LocalNotifier)
// or across replicas (RedisNotifier).
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrNotifierClosed is returned by Publish after Close
var ErrNotifierClosed = errors.New("notifier closed")

// LocalNotifier fans change messages out to subscribers of this process
type LocalNotifier struct {
	mu          sync.RWMutex
	subscribers map[uint64]func(shared.ChangeMessage)
	nextID      uint64
	closed      chan struct{}
	closeOnce   sync.Once
	logger      *zap.Logger
}

// NewLocalNotifier creates a new LocalNotifier
func NewLocalNotifier(logger *zap.Logger) *LocalNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalNotifier{
		subscribers: make(map[uint64]func(shared.ChangeMessage)),
		closed:      make(chan struct{}),
		logger:      logger,
	}
}

// Publish delivers msg to every current subscriber before returning.
// Callbacks must not block.
func (n *LocalNotifier) Publish(_ context.Context, msg shared.ChangeMessage) error {
	select {
	case <-n.closed:
		return ErrNotifierClosed
	default:
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	n.mu.RLock()
	callbacks := make([]func(shared.ChangeMessage), 0, len(n.subscribers))
	for _, cb := range n.subscribers {
		callbacks = append(callbacks, cb)
	}
	n.mu.RUnlock()

	for _, cb := range callbacks {
		deliver(n.logger, cb, msg)
	}
	return nil
}

// Subscribe registers callback and blocks until ctx is done or the notifier closes
func (n *LocalNotifier) Subscribe(ctx context.Context, callback func(msg shared.ChangeMessage)) error {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subscribers[id] = callback
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		delete(n.subscribers, id)
		n.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-n.closed:
		return nil
	}
}

// SubscriberCount returns the number of registered subscribers
func (n *LocalNotifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

// Close releases all subscribers
func (n *LocalNotifier) Close() error {
	n.closeOnce.Do(func() {
		close(n.closed)
	})
	return nil
}

// deliver invokes a subscriber callback, containing any panic
func deliver(logger *zap.Logger, callback func(shared.ChangeMessage), msg shared.ChangeMessage) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in change callback", zap.Any("panic", r))
		}
	}()
	callback(msg)
}

// decodeChange parses the JSON shared by Redis messages and NOTIFY payloads
func decodeChange(payload []byte) (shared.ChangeMessage, error) {
	var w shared.ChangeMessage
	if err := json.Unmarshal(payload, &w); err != nil {
		return shared.ChangeMessage{}, err
	}
	if w.Table == "" || w.ID == uuid.Nil {
		return shared.ChangeMessage{}, errors.New("change message missing table or id")
	}
	switch w.Action {
	case shared.ChangeInsert, shared.ChangeUpdate, shared.ChangeDelete:
	default:
		return shared.ChangeMessage{}, errors.New("unknown change action: " + string(w.Action))
	}
	if w.Timestamp == 0 {
		w.Timestamp = time.Now().UnixNano()
	}
	return w, nil
}

// Ensure LocalNotifier implements shared.ChangeNotifier
var _ shared.ChangeNotifier = (*LocalNotifier)(nil)
