// Package session keeps the exchanges of one conversational session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// History is a bounded list of recent exchanges. The most recent exchange
// is remembered separately and survives Clear, so "repeat" still works
// after the visible history was wiped.
type History struct {
	id      string
	limit   int
	mu      sync.Mutex
	entries []Entry
	last    *Entry
}

// NewHistory returns an empty history keeping at most limit entries.
// A non-positive limit means unbounded.
func NewHistory(limit int) *History {
	return &History{
		id:    uuid.New().String(),
		limit: limit,
	}
}

func (h *History) ID() string {
	return h.id
}

func (h *History) Add(question, answer string) Entry {
	e := Entry{Question: question, Answer: answer, AskedAt: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, e)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append([]Entry(nil), h.entries[len(h.entries)-h.limit:]...)
	}
	last := e
	h.last = &last
	return e
}

// Entries returns a copy, oldest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

func (h *History) Last() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.last == nil {
		return Entry{}, false
	}
	return *h.last, true
}
