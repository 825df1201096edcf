package events

import (
	"strings"
	"sync"
)

// Entry is a recorded event together with its assigned sequence number.
type Entry struct {
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// AttributeCarrier is implemented by events that expose a flat attribute map.
// Events without attributes are still recorded with their type only.
type AttributeCarrier interface {
	EventAttributes() map[string]string
}

// Recorder retains a bounded, sequenced journal of emitted events so read
// surfaces can page through recent history. Sequence numbers keep increasing
// after older entries are evicted.
type Recorder struct {
	mu       sync.RWMutex
	capacity int
	next     uint64
	entries  []Entry
}

// NewRecorder creates a recorder retaining at most capacity entries. A
// non-positive capacity falls back to a small default.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Recorder{capacity: capacity, next: 1}
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	entry := Entry{Type: evt.EventType()}
	if carrier, ok := evt.(AttributeCarrier); ok {
		attrs := carrier.EventAttributes()
		if len(attrs) > 0 {
			entry.Attributes = make(map[string]string, len(attrs))
			for k, v := range attrs {
				entry.Attributes[k] = v
			}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.Sequence = r.next
	r.next++
	r.entries = append(r.entries, entry)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
}

// List returns up to limit recorded entries whose type carries the supplied
// prefix, newest last. A non-positive limit returns everything retained.
func (r *Recorder) List(prefix string, limit int) []Entry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		if prefix != "" && !strings.HasPrefix(entry.Type, prefix) {
			continue
		}
		matched = append(matched, entry)
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}
