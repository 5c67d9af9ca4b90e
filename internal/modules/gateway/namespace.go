package gateway

import (
	"encoding/json"
	"strings"

	"github.com/gratitree/core/internal/middleware"
	"github.com/gratitree/core/internal/modules/daytree"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

type inboundWebMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func (h *Hub) registerNamespaces() {
	webNS := h.sio.Of(namespaceWeb, nil)
	_ = webNS.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		sid := string(client.Id())

		if h.tokenValidator != nil {
			if token := extractToken(client); token != "" && !h.tokenValidator(token) {
				_ = client.Emit("message", h.gatewayMessageFormat("AUTH_FAILED", "auth failed"))
				client.Disconnect(true)
				return
			}
		}

		_ = client.Emit("message", h.gatewayMessageFormat("GATEWAY_CONNECT", "WebSocket connected"))

		_ = client.On("message", func(eventArgs ...any) {
			msg, ok := parseInboundWebMessage(eventArgs...)
			if !ok {
				return
			}

			switch msg.Type {
			case messageViewDay:
				dayID := firstNonEmptyString(
					strFromAny(msg.Payload["dayId"]),
					strFromAny(msg.Payload["day_id"]),
				)
				if !daytree.ValidDayID(dayID) {
					_ = client.Emit("message", h.gatewayMessageFormat("INVALID_DAY", dayID))
					return
				}
				// A viewer watches one day at a time: leave the
				// previous room before joining the next.
				h.mu.RLock()
				prev := h.sidDay[sid]
				h.mu.RUnlock()
				if prev != "" && prev != dayID {
					client.Leave(socketio.Room(DayRoom(prev)))
				}
				client.Join(socketio.Room(DayRoom(dayID)))
				h.register <- clientMeta{sid: sid, dayID: dayID}
			case messageLeaveDay:
				h.mu.RLock()
				prev := h.sidDay[sid]
				h.mu.RUnlock()
				if prev != "" {
					client.Leave(socketio.Room(DayRoom(prev)))
				}
				h.unregister <- clientMeta{sid: sid}
			}
		})

		_ = client.On("disconnect", func(_ ...any) {
			h.unregister <- clientMeta{sid: sid}
		})
	})
}

func extractToken(client *socketio.Socket) string {
	handshake := client.Handshake()
	if handshake == nil {
		return ""
	}
	if token := firstValueFromMultiMap(handshake.Query, "token"); token != "" {
		return middleware.NormalizeToken(token)
	}
	if token := firstValueFromMultiMap(handshake.Headers, "authorization"); token != "" {
		return middleware.NormalizeToken(token)
	}
	return ""
}

func firstValueFromMultiMap(values map[string][]string, key string) string {
	if len(values) == 0 {
		return ""
	}
	for k, list := range values {
		if !strings.EqualFold(strings.TrimSpace(k), key) || len(list) == 0 {
			continue
		}
		v := strings.TrimSpace(list[0])
		if v != "" {
			return v
		}
	}
	return ""
}

func parseInboundWebMessage(args ...any) (inboundWebMessage, bool) {
	if len(args) == 0 || args[0] == nil {
		return inboundWebMessage{}, false
	}

	var msg inboundWebMessage
	switch raw := args[0].(type) {
	case inboundWebMessage:
		msg = raw
	case map[string]interface{}:
		msg.Type = strFromAny(raw["type"])
		msg.Payload = mapFromAny(raw["payload"])
	case string:
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return inboundWebMessage{}, false
		}
	case []byte:
		if err := json.Unmarshal(raw, &msg); err != nil {
			return inboundWebMessage{}, false
		}
	default:
		data, err := json.Marshal(raw)
		if err != nil {
			return inboundWebMessage{}, false
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			return inboundWebMessage{}, false
		}
	}

	msg.Type = strings.TrimSpace(msg.Type)
	if msg.Type == "" {
		return inboundWebMessage{}, false
	}
	if msg.Payload == nil {
		msg.Payload = map[string]interface{}{}
	}
	return msg, true
}

func mapFromAny(v interface{}) map[string]interface{} {
	switch typed := v.(type) {
	case nil:
		return map[string]interface{}{}
	case map[string]interface{}:
		return typed
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return map[string]interface{}{}
		}
		out := map[string]interface{}{}
		if err := json.Unmarshal(data, &out); err != nil {
			return map[string]interface{}{}
		}
		return out
	}
}

func strFromAny(v interface{}) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	default:
		return ""
	}
}

func firstNonEmptyString(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
