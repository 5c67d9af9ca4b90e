package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	pkgredis "github.com/gratitree/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

// NewHub builds the gateway hub. tokenValidator authenticates optional
// handshake tokens; a nil validator admits everyone as a viewer.
func NewHub(rc *pkgredis.Client, logger *zap.Logger, tokenValidator func(string) bool) *Hub {
	sio := socketio.NewServer(nil, nil)
	h := &Hub{
		sidDay:         make(map[string]string),
		dayCount:       make(map[string]int),
		broadcast:      make(chan Message, 256),
		register:       make(chan clientMeta, 256),
		unregister:     make(chan clientMeta, 256),
		notify:         make(chan dayNotification, 256),
		instanceID:     uuid.New().String(),
		rc:             rc,
		logger:         logger,
		sio:            sio,
		tokenValidator: tokenValidator,
	}
	h.registerNamespaces()
	return h
}

// SetDayListener wires the live synchronizer. Must be called before Run.
func (h *Hub) SetDayListener(l DayListener) {
	h.listenerMu.Lock()
	h.listener = l
	h.listenerMu.Unlock()
}

// Run starts the hub loop, the listener notifier and the Redis subscriber.
func (h *Hub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)
	go h.notifyLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := h.rc.Publish(ctx, redisChanTree, string(data)); err != nil && h.logger != nil {
				h.logger.Warn("gateway publish failed", zap.String("channel", redisChanTree), zap.Error(err))
			}
		}
	}
}

// registerClient moves a socket into a day room, leaving its previous one.
func (h *Hub) registerClient(c clientMeta) {
	var viewed, idle string

	h.mu.Lock()
	if oldDay, ok := h.sidDay[c.sid]; ok {
		if oldDay == c.dayID {
			h.mu.Unlock()
			return
		}
		if h.dayCount[oldDay] > 0 {
			h.dayCount[oldDay]--
		}
		if h.dayCount[oldDay] == 0 {
			delete(h.dayCount, oldDay)
			idle = oldDay
		}
	}
	h.sidDay[c.sid] = c.dayID
	h.dayCount[c.dayID]++
	if h.dayCount[c.dayID] == 1 {
		viewed = c.dayID
	}
	h.mu.Unlock()

	h.notifyListener(viewed, idle)
}

func (h *Hub) unregisterClient(c clientMeta) {
	var idle string

	h.mu.Lock()
	day, ok := h.sidDay[c.sid]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sidDay, c.sid)
	if h.dayCount[day] > 0 {
		h.dayCount[day]--
	}
	if h.dayCount[day] == 0 {
		delete(h.dayCount, day)
		idle = day
	}
	h.mu.Unlock()

	h.notifyListener("", idle)
}

// notifyListener queues a room transition for the notifier goroutine. The
// queue keeps the hub loop's order: a leave observed before a join is
// delivered before it, so the listener never tears down a subscription a
// later join re-established.
func (h *Hub) notifyListener(viewed, idle string) {
	if viewed == "" && idle == "" {
		return
	}
	h.notify <- dayNotification{viewed: viewed, idle: idle}
}

// notifyLoop delivers room transitions to the day listener one at a time,
// in order, off the hub loop so a slow subscription open cannot stall
// registration.
func (h *Hub) notifyLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-h.notify:
			h.listenerMu.RLock()
			l := h.listener
			h.listenerMu.RUnlock()
			if l == nil {
				continue
			}
			if n.idle != "" {
				l.DayIdle(n.idle)
			}
			if n.viewed != "" {
				l.DayViewed(n.viewed)
			}
		}
	}
}

// BroadcastDay sends an event to every viewer of a day.
func (h *Hub) BroadcastDay(dayID, event string, payload interface{}) {
	h.broadcast <- Message{Event: event, Payload: payload, Room: DayRoom(dayID), Origin: h.instanceID}
}

// ViewerCount returns the number of sockets watching a day.
func (h *Hub) ViewerCount(dayID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dayCount[dayID]
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}
