package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	defaultHeartbeat  = 30 * time.Second
	defaultMaxClients = 1000
	// clientBuffer lets a burst of changes queue without blocking the broadcast
	clientBuffer = 100
)

// streamEvent is one server-sent event
type streamEvent struct {
	Event string
	ID    string
	Data  string
}

type streamClient struct {
	id   string
	ch   chan streamEvent
	done chan struct{}
}

// ChangeStreamHandler pushes row change messages to browsers over SSE
type ChangeStreamHandler struct {
	BaseHandler
	notifier   shared.ChangeNotifier
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int

	clients sync.Map // id -> *streamClient
	count   atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
}

// ChangeStreamOption configures a ChangeStreamHandler
type ChangeStreamOption func(*ChangeStreamHandler)

// WithStreamLogger sets the logger
func WithStreamLogger(logger *zap.Logger) ChangeStreamOption {
	return func(h *ChangeStreamHandler) { h.logger = logger }
}

// WithStreamHeartbeat sets the heartbeat interval
func WithStreamHeartbeat(d time.Duration) ChangeStreamOption {
	return func(h *ChangeStreamHandler) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithStreamMaxClients caps concurrent connections; zero means unlimited
func WithStreamMaxClients(n int) ChangeStreamOption {
	return func(h *ChangeStreamHandler) { h.maxClients = n }
}

// NewChangeStreamHandler creates a new ChangeStreamHandler
func NewChangeStreamHandler(notifier shared.ChangeNotifier, opts ...ChangeStreamOption) *ChangeStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &ChangeStreamHandler{
		notifier:   notifier,
		logger:     zap.NewNop(),
		heartbeat:  defaultHeartbeat,
		maxClients: defaultMaxClients,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start subscribes to the notifier and starts the heartbeat
func (h *ChangeStreamHandler) Start() error {
	if !h.started.CompareAndSwap(false, true) {
		return fmt.Errorf("change stream already started")
	}

	go h.sendHeartbeats()
	go func() {
		err := h.notifier.Subscribe(h.ctx, h.onChange)
		if err != nil && h.ctx.Err() == nil {
			h.logger.Error("Change stream subscription ended", zap.Error(err))
		}
	}()
	h.logger.Info("Change stream started", zap.Int("max_clients", h.maxClients))
	return nil
}

// Stop disconnects every client
func (h *ChangeStreamHandler) Stop() {
	h.cancel()
	h.logger.Info("Change stream stopped")
}

// ClientCount returns the number of connected clients
func (h *ChangeStreamHandler) ClientCount() int {
	return int(h.count.Load())
}

func (h *ChangeStreamHandler) onChange(msg shared.ChangeMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode change message", zap.Error(err))
		return
	}
	h.broadcast(streamEvent{
		Event: "change",
		ID:    strconv.FormatInt(msg.Timestamp, 10),
		Data:  string(data),
	})
}

// broadcast never blocks: a client whose buffer is full misses the event
func (h *ChangeStreamHandler) broadcast(ev streamEvent) {
	h.clients.Range(func(_, value any) bool {
		client := value.(*streamClient)
		select {
		case client.ch <- ev:
		case <-client.done:
		default:
			h.logger.Warn("Change stream client too slow, dropping event",
				zap.String("client_id", client.id))
		}
		return true
	})
}

func (h *ChangeStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-h.ctx.Done():
			return
		case t := <-ticker.C:
			h.broadcast(streamEvent{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, t.Unix()),
			})
		}
	}
}

// Stream holds the connection open and writes change events as they occur.
// Clients refetch the affected rows; events carry ids, not row contents.
// GET /changes/stream
func (h *ChangeStreamHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.count.Add(1) > int64(h.maxClients) {
		h.count.Add(-1)
		h.ErrorWithCode(c, dto.ErrCodeMaxConnections, "Maximum number of change stream connections reached")
		return
	}
	if h.maxClients <= 0 {
		h.count.Add(1)
	}
	defer h.count.Add(-1)

	client := &streamClient{
		id:   uuid.NewString(),
		ch:   make(chan streamEvent, clientBuffer),
		done: make(chan struct{}),
	}
	h.clients.Store(client.id, client)
	defer func() {
		close(client.done)
		h.clients.Delete(client.id)
	}()

	// the server write timeout would otherwise end the stream
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("Change stream cannot clear write deadline", zap.Error(err))
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	h.logger.Debug("Change stream client connected", zap.String("client_id", client.id))
	writeEvent(c.Writer, streamEvent{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":%q,"timestamp":%d}`, client.id, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Debug("Change stream client disconnected", zap.String("client_id", client.id))
			return
		case <-h.ctx.Done():
			return
		case ev := <-client.ch:
			writeEvent(c.Writer, ev)
			c.Writer.Flush()
		}
	}
}

func writeEvent(w io.Writer, ev streamEvent) {
	if ev.Event != "" {
		fmt.Fprintf(w, "event: %s\n", ev.Event)
	}
	if ev.ID != "" {
		fmt.Fprintf(w, "id: %s\n", ev.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", ev.Data)
}
