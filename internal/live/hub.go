// Package live fans out change notifications so clients can keep lists
// (my papers, published papers, workspace, universities) up to date
// without polling.
//
// Go Pattern: Subscribers register a callback and get back a cancel
// function, the same shape as context.WithCancel. Callbacks run on the
// publisher's goroutine, so they must not block: the SSE handler pushes
// into a buffered channel and drops when it is full.
package live

import (
	"context"
	"sync"
)

// Event kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Event says that something under Topic changed.
type Event struct {
	Topic string `json:"topic"`
	Kind  string `json:"kind"`
	ID    string `json:"id"`
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Hub is a Publisher that also accepts subscriptions.
type Hub interface {
	Publisher
	Subscribe(topic string, fn func(Event)) (cancel func())
}

// Topic names.
const TopicPublishedPapers = "papers/published"
const TopicUniversities = "universities"

func TopicOwnerPapers(uid string) string  { return "papers/owner/" + uid }
func TopicOwnerAnswers(uid string) string { return "answers/owner/" + uid }
func TopicOwnerJobs(uid string) string    { return "jobs/owner/" + uid }

// LocalHub delivers events to subscribers in this process.
type LocalHub struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func(Event)
}

// NewLocalHub creates an empty hub.
func NewLocalHub() *LocalHub {
	return &LocalHub{subs: make(map[string]map[int]func(Event))}
}

// Subscribe registers fn for one topic. Calling cancel more than once is safe.
func (h *LocalHub) Subscribe(topic string, fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	id := h.next
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]func(Event))
	}
	h.subs[topic][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[topic], id)
			if len(h.subs[topic]) == 0 {
				delete(h.subs, topic)
			}
		})
	}
}

// Publish calls every subscriber of e.Topic. The lock is released before
// the callbacks run so a callback may subscribe or cancel.
func (h *LocalHub) Publish(ctx context.Context, e Event) {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.subs[e.Topic]))
	for _, fn := range h.subs[e.Topic] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Subscribers returns how many callbacks listen on topic.
func (h *LocalHub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
