package gateway

import (
	"sync"

	pkgredis "github.com/gratitree/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	namespaceWeb = "/web"

	redisChanTree = "gratitree:gateway:tree"

	messageViewDay  = "view_day"
	messageLeaveDay = "leave_day"

	dayRoomPrefix = "day:"
)

// DayRoom returns the socket.io room name for a day's viewers.
func DayRoom(dayID string) string { return dayRoomPrefix + dayID }

// DayListener is notified when a day's room gains its first viewer or loses
// its last one. The live synchronizer implements it.
type DayListener interface {
	DayViewed(dayID string)
	DayIdle(dayID string)
}

// Message is the envelope used by hub broadcasts and Redis fan-out. Origin
// carries the emitting hub's instance id so a hub can skip its own messages
// when they come back over the fan-out channel.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	Room    string      `json:"room,omitempty"`
	Origin  string      `json:"origin,omitempty"`
}

type gatewayPayload struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clientMeta struct {
	sid   string
	dayID string
}

// dayNotification is one room transition, in the order the hub loop saw it.
// idle fires before viewed when a single transition produces both.
type dayNotification struct {
	viewed string
	idle   string
}

// Hub manages the socket.io web namespace, day-room membership and cluster
// fan-out.
type Hub struct {
	mu sync.RWMutex

	sidDay   map[string]string
	dayCount map[string]int

	broadcast  chan Message
	register   chan clientMeta
	unregister chan clientMeta
	notify     chan dayNotification

	instanceID string
	rc         *pkgredis.Client
	logger     *zap.Logger
	sio        *socketio.Server

	tokenValidator func(string) bool

	listenerMu sync.RWMutex
	listener   DayListener
}
