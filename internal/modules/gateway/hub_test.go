package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingListener struct {
	calls chan string
}

func newRecordingListener() *recordingListener {
	return &recordingListener{calls: make(chan string, 32)}
}

func (l *recordingListener) DayViewed(dayID string) { l.calls <- "viewed:" + dayID }
func (l *recordingListener) DayIdle(dayID string)   { l.calls <- "idle:" + dayID }

func (l *recordingListener) next(t *testing.T) string {
	t.Helper()
	select {
	case c := <-l.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for listener call")
		return ""
	}
}

func drainNotifications(t *testing.T, h *Hub, n int) []dayNotification {
	t.Helper()
	out := make([]dayNotification, 0, n)
	for i := 0; i < n; i++ {
		select {
		case notif := <-h.notify:
			out = append(out, notif)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d notifications, got %d", n, len(out))
		}
	}
	return out
}

func TestRoomTransitionsEmitInHubOrder(t *testing.T) {
	h := NewHub(nil, zap.NewNop(), nil)

	// Leave-then-rejoin of the same day, as the hub loop serializes it.
	h.registerClient(clientMeta{sid: "s1", dayID: "2024-06-15"})
	h.unregisterClient(clientMeta{sid: "s1"})
	h.registerClient(clientMeta{sid: "s2", dayID: "2024-06-15"})

	notifs := drainNotifications(t, h, 3)
	assert.Equal(t, dayNotification{viewed: "2024-06-15"}, notifs[0])
	assert.Equal(t, dayNotification{idle: "2024-06-15"}, notifs[1])
	assert.Equal(t, dayNotification{viewed: "2024-06-15"}, notifs[2])
}

func TestNotifyLoopDeliversInOrder(t *testing.T) {
	h := NewHub(nil, zap.NewNop(), nil)
	l := newRecordingListener()
	h.SetDayListener(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.notifyLoop(ctx)

	// The idle observed first must reach the listener before the later
	// viewed, so a fresh subscription is never torn down by a stale leave.
	h.notifyListener("", "2024-06-15")
	h.notifyListener("2024-06-15", "")

	assert.Equal(t, "idle:2024-06-15", l.next(t))
	assert.Equal(t, "viewed:2024-06-15", l.next(t))
}

func TestSecondViewerSameDayEmitsNothing(t *testing.T) {
	h := NewHub(nil, zap.NewNop(), nil)

	h.registerClient(clientMeta{sid: "s1", dayID: "2024-06-15"})
	h.registerClient(clientMeta{sid: "s2", dayID: "2024-06-15"})
	h.unregisterClient(clientMeta{sid: "s1"})

	// Only the first join crosses the zero boundary; the second join and
	// the non-final leave stay silent.
	notifs := drainNotifications(t, h, 1)
	require.Equal(t, dayNotification{viewed: "2024-06-15"}, notifs[0])
	select {
	case extra := <-h.notify:
		t.Fatalf("unexpected notification %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 1, h.ViewerCount("2024-06-15"))
}

func TestRoomSwitchEmitsIdleBeforeViewed(t *testing.T) {
	h := NewHub(nil, zap.NewNop(), nil)

	h.registerClient(clientMeta{sid: "s1", dayID: "2024-06-14"})
	h.registerClient(clientMeta{sid: "s1", dayID: "2024-06-15"})

	notifs := drainNotifications(t, h, 2)
	assert.Equal(t, dayNotification{viewed: "2024-06-14"}, notifs[0])
	assert.Equal(t, dayNotification{viewed: "2024-06-15", idle: "2024-06-14"}, notifs[1])
	assert.Equal(t, 0, h.ViewerCount("2024-06-14"))
	assert.Equal(t, 1, h.ViewerCount("2024-06-15"))
}
