package gateway

import (
	"context"
	"encoding/json"

	socketio "github.com/zishang520/socket.io/v2/socket"
)

func (h *Hub) gatewayMessageFormat(event string, payload interface{}) gatewayPayload {
	return gatewayPayload{
		Type: event,
		Data: payload,
	}
}

func (h *Hub) deliver(msg Message) {
	ns := h.sio.Of(namespaceWeb, nil)
	if msg.Room == "" {
		ns.Emit("message", h.gatewayMessageFormat(msg.Event, msg.Payload))
		return
	}
	ns.To(socketio.Room(msg.Room)).Emit("message", h.gatewayMessageFormat(msg.Event, msg.Payload))
}

// subscribeRedis listens for broadcasts from other server instances. Messages
// this instance published come back too and are skipped by origin id.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChanTree)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			if msg.Origin == h.instanceID {
				continue
			}
			h.deliver(msg)
		}
	}
}
