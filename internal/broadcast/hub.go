package broadcast

import (
	"strconv"
	"sync"
	"time"
)

// Event is one entry on a project's ordered live stream. EventID is a
// per-project monotonically increasing sequence, so delivery order to any
// subscriber matches publish (= commit) order.
type Event struct {
	EventID   string `json:"event_id"`
	Event     string `json:"event"`
	ProjectID string `json:"project_id"`
	ServerTS  int64  `json:"server_ts"`
	Data      any    `json:"data"`
}

// maxWatcherMisses is how many consecutive undeliverable events a
// subscriber may accumulate before it is force-unsubscribed.
const maxWatcherMisses = 3

// Hub fans settlement events out to viewers. The registry is sharded per
// project: each project gets its own buffer and lock, so publishes on one
// project never contend with another.
type Hub struct {
	mu      sync.RWMutex
	buffers map[string]*projectBuffer
	max     int
	closed  bool
}

func NewHub(max int) *Hub {
	if max <= 0 {
		max = 500
	}
	return &Hub{buffers: map[string]*projectBuffer{}, max: max}
}

func (h *Hub) buffer(projectID string, create bool) *projectBuffer {
	h.mu.RLock()
	b := h.buffers[projectID]
	h.mu.RUnlock()
	if b != nil || !create {
		return b
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if b = h.buffers[projectID]; b == nil {
		b = newProjectBuffer(projectID, h.max)
		h.buffers[projectID] = b
	}
	return b
}

// Publish appends the event to the project's stream and delivers it to all
// current subscribers. Delivery never blocks: a subscriber that cannot keep
// up misses the event and is dropped after maxWatcherMisses misses.
func (h *Hub) Publish(projectID, event string, data any) Event {
	b := h.buffer(projectID, true)
	if b == nil {
		return Event{}
	}
	return b.append(event, data)
}

// Subscribe registers a new viewer channel for the project.
func (h *Hub) Subscribe(projectID string) chan Event {
	b := h.buffer(projectID, true)
	if b == nil {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	return b.subscribe()
}

// Unsubscribe removes the channel. Unsubscribing twice is a no-op.
func (h *Hub) Unsubscribe(projectID string, ch chan Event) {
	if b := h.buffer(projectID, false); b != nil {
		b.unsubscribe(ch)
	}
}

// ReplayAfter returns buffered events with an id greater than lastEventID,
// oldest first. An empty or malformed id replays the whole buffer.
func (h *Hub) ReplayAfter(projectID, lastEventID string) []Event {
	if b := h.buffer(projectID, false); b != nil {
		return b.replayAfter(lastEventID)
	}
	return nil
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, b := range h.buffers {
		b.close()
		delete(h.buffers, id)
	}
}

type watcherState struct {
	misses int
}

type projectBuffer struct {
	mu        sync.Mutex
	projectID string
	nextID    int64
	max       int
	events    []Event
	watchers  map[chan Event]*watcherState
	closed    bool
}

func newProjectBuffer(projectID string, max int) *projectBuffer {
	return &projectBuffer{
		projectID: projectID,
		max:       max,
		watchers:  map[chan Event]*watcherState{},
	}
}

func (b *projectBuffer) append(event string, data any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Event{}
	}
	b.nextID++
	ev := Event{
		EventID:   strconv.FormatInt(b.nextID, 10),
		Event:     event,
		ProjectID: b.projectID,
		ServerTS:  time.Now().UnixMilli(),
		Data:      data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch, w := range b.watchers {
		select {
		case ch <- ev:
			w.misses = 0
		default:
			w.misses++
			if w.misses >= maxWatcherMisses {
				delete(b.watchers, ch)
				close(ch)
			}
		}
	}
	return ev
}

func (b *projectBuffer) replayAfter(lastEventID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		out := make([]Event, len(b.events))
		copy(out, b.events)
		return out
	}
	out := make([]Event, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *projectBuffer) subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = &watcherState{}
	return ch
}

func (b *projectBuffer) unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *projectBuffer) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
