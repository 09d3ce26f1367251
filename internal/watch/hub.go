// Package watch turns local-store mutations into live query feeds.
//
// A Hub carries one notification per mutation per topic. A Feed re-runs its
// query for each notification it receives, so subscribers get the current
// snapshot on subscribe and then one snapshot per subsequent mutation.
package watch

import "sync"

// Topics used by the repositories.
const (
	TopicCategories = "categories"
	TopicExpenses   = "expenses"
)

type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Notify records one mutation on topic for every current subscriber.
func (h *Hub) Notify(topic string) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs[topic]))
	for s := range h.subs[topic] {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.signal()
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

func (h *Hub) subscribe(topic string) *subscriber {
	s := &subscriber{wake: make(chan struct{}, 1)}
	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*subscriber]struct{})
	}
	h.subs[topic][s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(topic string, s *subscriber) {
	h.mu.Lock()
	delete(h.subs[topic], s)
	if len(h.subs[topic]) == 0 {
		delete(h.subs, topic)
	}
	h.mu.Unlock()
}

// subscriber counts pending notifications; wake only nudges the reader.
type subscriber struct {
	mu      sync.Mutex
	pending int
	wake    chan struct{}
}

func (s *subscriber) signal() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == 0 {
		return false
	}
	s.pending--
	return true
}
