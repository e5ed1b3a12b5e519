package topics

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
)

const DefaultSubscriberBuffer = 16

// Event is a single message routed to a topic.
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"-"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub fans events out to topic subscribers. Publishing never blocks:
// subscribers that cannot keep up lose events rather than stall the
// write path. Events are deltas only: a subscriber joining after a
// publish never sees it, so clients fetch current state on connect and
// follow the stream from there.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	subscriberBuffer int

	onDrop func(topic string)
}

type stream struct {
	mu     sync.Mutex
	subs   map[uint64]chan Event
	nextID uint64
}

type Subscription struct {
	hub   *Hub
	topic string
	id    uint64
	ch    chan Event
	once  sync.Once
}

// Option configures the hub.
type Option func(*Hub)

// WithSubscriberBuffer overrides the per-subscriber channel capacity.
func WithSubscriberBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.subscriberBuffer = n
		}
	}
}

// WithDropCallback installs a hook invoked when a slow subscriber drops an event.
func WithDropCallback(fn func(topic string)) Option {
	return func(h *Hub) {
		h.onDrop = fn
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		streams:          make(map[string]*stream),
		subscriberBuffer: DefaultSubscriberBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish delivers the event to all current subscribers of the topic.
// Topics with no subscribers are not materialized.
func (h *Hub) Publish(topic string, event Event) {
	if h == nil {
		return
	}
	name := strings.TrimSpace(topic)
	if name == "" {
		return
	}
	event.Topic = name

	h.mu.RLock()
	stream := h.streams[name]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	subs := make([]chan Event, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			if h.onDrop != nil {
				h.onDrop(name)
			}
		}
	}
}

// Subscribe registers a new subscriber on the topic. Only events
// published after the call are delivered.
func (h *Hub) Subscribe(topic string) (*Subscription, error) {
	if h == nil {
		return nil, errors.New("hub_unavailable")
	}
	name := strings.TrimSpace(topic)
	if name == "" {
		return nil, errors.New("invalid_topic")
	}

	stream := h.ensureStream(name)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan Event)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan Event, h.subscriberBuffer)
	stream.subs[id] = ch
	stream.mu.Unlock()

	return &Subscription{
		hub:   h,
		topic: name,
		id:    id,
		ch:    ch,
	}, nil
}

// SubscriberCount returns the number of live subscribers on the topic.
func (h *Hub) SubscriberCount(topic string) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	stream := h.streams[strings.TrimSpace(topic)]
	h.mu.RUnlock()
	if stream == nil {
		return 0
	}
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return len(stream.subs)
}

func (h *Hub) ensureStream(topic string) *stream {
	h.mu.RLock()
	current := h.streams[topic]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[topic]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan Event)}
		h.streams[topic] = current
	}
	return current
}

func (h *Hub) unsubscribe(topic string, id uint64) {
	if h == nil {
		return
	}
	name := strings.TrimSpace(topic)
	if name == "" {
		return
	}

	h.mu.RLock()
	stream := h.streams[name]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	remaining := len(stream.subs)
	stream.mu.Unlock()
	if remaining != 0 {
		return
	}

	h.mu.Lock()
	current := h.streams[name]
	if current != stream {
		h.mu.Unlock()
		return
	}
	stream.mu.Lock()
	empty := len(stream.subs) == 0
	stream.mu.Unlock()
	if empty {
		delete(h.streams, name)
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Topic() string {
	if s == nil {
		return ""
	}
	return s.topic
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.topic, s.id)
	})
}
