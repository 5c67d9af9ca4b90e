package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRoom(t *testing.T) {
	assert.Equal(t, "day:2024-06-15", DayRoom("2024-06-15"))
}

func TestParseInboundWebMessage(t *testing.T) {
	msg, ok := parseInboundWebMessage(map[string]interface{}{
		"type":    "view_day",
		"payload": map[string]interface{}{"dayId": "2024-06-15"},
	})
	require.True(t, ok)
	assert.Equal(t, "view_day", msg.Type)
	assert.Equal(t, "2024-06-15", strFromAny(msg.Payload["dayId"]))
}

func TestParseInboundWebMessageFromJSON(t *testing.T) {
	msg, ok := parseInboundWebMessage(`{"type":"leave_day","payload":{}}`)
	require.True(t, ok)
	assert.Equal(t, "leave_day", msg.Type)
	assert.NotNil(t, msg.Payload)
}

func TestParseInboundWebMessageRejectsEmpty(t *testing.T) {
	_, ok := parseInboundWebMessage()
	assert.False(t, ok)

	_, ok = parseInboundWebMessage(nil)
	assert.False(t, ok)

	_, ok = parseInboundWebMessage(map[string]interface{}{"payload": map[string]interface{}{}})
	assert.False(t, ok)
}

func TestFirstValueFromMultiMap(t *testing.T) {
	values := map[string][]string{
		"Authorization": {"Bearer abc"},
		"Empty":         {},
	}

	assert.Equal(t, "Bearer abc", firstValueFromMultiMap(values, "authorization"))
	assert.Equal(t, "", firstValueFromMultiMap(values, "empty"))
	assert.Equal(t, "", firstValueFromMultiMap(values, "missing"))
	assert.Equal(t, "", firstValueFromMultiMap(nil, "authorization"))
}
