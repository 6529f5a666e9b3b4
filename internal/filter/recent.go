package filter

import "sync"

// RecentMessages is a fixed-size ring buffer of recently seen message texts,
// used for near-duplicate suppression of re-sent notifications.
type RecentMessages struct {
	items []string
	next  int
	size  int
	mu    sync.Mutex
}

// NewRecentMessages creates a ring buffer holding at most capacity texts.
func NewRecentMessages(capacity int) *RecentMessages {
	if capacity <= 0 {
		capacity = 10
	}
	return &RecentMessages{items: make([]string, capacity)}
}

// Add records a message text, evicting the oldest entry when full.
func (r *RecentMessages) Add(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.next] = text
	r.next = (r.next + 1) % len(r.items)
	if r.size < len(r.items) {
		r.size++
	}
}

// Items returns the retained texts, oldest first.
func (r *RecentMessages) Items() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, r.size)
	if r.size < len(r.items) {
		out = append(out, r.items[:r.size]...)
		return out
	}
	out = append(out, r.items[r.next:]...)
	out = append(out, r.items[:r.next]...)
	return out
}
