// Package livesync keeps connected viewers in sync with the day trees they
// watch. Every viewer follows exactly one day at a time, so the manager holds
// one live subscription per day that still has viewers: opened when a day's
// room gains its first viewer, torn down completely when it loses its last.
// Results from a torn-down subscription are discarded.
package livesync

import (
	"context"
	"sort"
	"sync"

	"github.com/gratitree/core/internal/modules/entry"
	"go.uber.org/zap"
)

// Event names pushed to connected viewers.
const (
	EventTreeSnapshot = "tree.snapshot"
	EventTreeError    = "tree.error"
)

// Broadcaster pushes an event to every viewer of a day.
type Broadcaster interface {
	BroadcastDay(dayID, event string, payload interface{})
}

// daySub is one day's live subscription handle.
type daySub struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager owns the per-day subscription table. All transitions go through
// the mutex; pump goroutines never touch the table directly and re-check
// their own handle's liveness before broadcasting.
type Manager struct {
	store   entry.Store
	service *entry.Service
	bc      Broadcaster
	log     *zap.Logger

	mu   sync.Mutex
	subs map[string]*daySub
}

// NewManager returns a Manager with no active subscriptions.
func NewManager(store entry.Store, service *entry.Service, bc Broadcaster, log *zap.Logger) *Manager {
	return &Manager{
		store:   store,
		service: service,
		bc:      bc,
		log:     log,
		subs:    make(map[string]*daySub),
	}
}

// Live reports whether the day currently has an open subscription.
func (m *Manager) Live(dayID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subs[dayID]
	return ok
}

// LiveDays returns the days with open subscriptions, sorted.
func (m *Manager) LiveDays() []string {
	m.mu.Lock()
	days := make([]string, 0, len(m.subs))
	for d := range m.subs {
		days = append(days, d)
	}
	m.mu.Unlock()
	sort.Strings(days)
	return days
}

// Subscribe opens the day's change subscription if it is not already live.
// Other days' subscriptions are untouched: viewers on different days never
// disturb each other.
func (m *Manager) Subscribe(dayID string) {
	m.mu.Lock()
	if _, ok := m.subs[dayID]; ok {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	ds := &daySub{cancel: cancel, done: make(chan struct{})}
	m.subs[dayID] = ds
	m.mu.Unlock()

	sub, err := m.store.Watch(ctx, dayID)
	if err != nil {
		m.log.Warn("live watch failed", zap.String("day", dayID), zap.Error(err))
		m.broadcastError(dayID, err)
		m.dropIfOwned(dayID, ds)
		cancel()
		close(ds.done)
		return
	}

	go m.pump(ctx, dayID, ds, sub)

	// Initial snapshot so a viewer never waits for the first insert.
	m.publish(ctx, dayID, ds)
}

// Unsubscribe tears the day's subscription down and waits for its pump to
// drain. A no-op when the day is not live.
func (m *Manager) Unsubscribe(dayID string) {
	m.mu.Lock()
	ds, ok := m.subs[dayID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.subs, dayID)
	m.mu.Unlock()

	ds.cancel()
	<-ds.done
}

// Shutdown tears down every open subscription.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	subs := m.subs
	m.subs = make(map[string]*daySub)
	m.mu.Unlock()

	for _, ds := range subs {
		ds.cancel()
		<-ds.done
	}
}

// DayViewed implements the gateway day listener: a day's room gained its
// first viewer.
func (m *Manager) DayViewed(dayID string) { m.Subscribe(dayID) }

// DayIdle implements the gateway day listener: a day's room emptied.
func (m *Manager) DayIdle(dayID string) { m.Unsubscribe(dayID) }

// dropIfOwned removes the table entry only when it still belongs to ds, so
// a failed open never evicts a successor subscription for the same day.
func (m *Manager) dropIfOwned(dayID string, ds *daySub) {
	m.mu.Lock()
	if m.subs[dayID] == ds {
		delete(m.subs, dayID)
	}
	m.mu.Unlock()
}

// owned reports whether ds is still the day's registered subscription.
func (m *Manager) owned(dayID string, ds *daySub) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs[dayID] == ds
}

// pump forwards change signals into snapshot broadcasts until the
// subscription is cancelled.
func (m *Manager) pump(ctx context.Context, dayID string, ds *daySub, sub entry.Subscription) {
	defer close(ds.done)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Changes():
			if !ok {
				return
			}
			m.publish(ctx, dayID, ds)
		case err := <-sub.Errs():
			if err == nil {
				continue
			}
			m.log.Warn("live subscription error", zap.String("day", dayID), zap.Error(err))
			m.broadcastError(dayID, err)
		}
	}
}

// publish rebuilds and broadcasts the day's snapshot, unless this
// subscription was torn down while the reload ran.
func (m *Manager) publish(ctx context.Context, dayID string, ds *daySub) {
	snapshot, err := m.service.Snapshot(ctx, dayID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.log.Warn("snapshot rebuild failed", zap.String("day", dayID), zap.Error(err))
		m.broadcastError(dayID, err)
		return
	}
	if !m.owned(dayID, ds) {
		// The result belongs to an abandoned subscription.
		return
	}
	m.bc.BroadcastDay(dayID, EventTreeSnapshot, snapshot)
}

// broadcastError reports a sync failure to the day's viewers. The previous
// snapshot stays on screen; no stale-tree wipe.
func (m *Manager) broadcastError(dayID string, err error) {
	m.bc.BroadcastDay(dayID, EventTreeError, map[string]string{
		"day_id":  dayID,
		"message": err.Error(),
	})
}
