package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationKind distinguishes toast styles.
type NotificationKind string

const (
	NoteSuccess NotificationKind = "success"
	NoteError   NotificationKind = "error"
	NoteInfo    NotificationKind = "info"
)

// Notification is a short-lived user-facing message. It never mutates cart
// state; it only rides the display queue until dismissed or expired.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// DefaultDisplayDuration is how long a notification stays visible unless
// dismissed earlier.
const DefaultDisplayDuration = 4 * time.Second

// NotificationQueue owns the list of live notifications. Entries auto-expire
// after the display duration; duplicates are not collapsed, since the queue is
// bounded by time rather than count.
type NotificationQueue struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	notes []Notification
}

// NewNotificationQueue returns a queue whose entries expire after ttl. A
// non-positive ttl falls back to DefaultDisplayDuration.
func NewNotificationQueue(ttl time.Duration) *NotificationQueue {
	if ttl <= 0 {
		ttl = DefaultDisplayDuration
	}
	return &NotificationQueue{ttl: ttl, now: time.Now}
}

// Push appends a notification and returns its id.
func (q *NotificationQueue) Push(kind NotificationKind, message string) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: q.now(),
	}
	q.notes = append(q.notes, n)
	return n.ID
}

// Dismiss removes a specific notification. Unknown ids are ignored.
func (q *NotificationQueue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.notes {
		if q.notes[i].ID == id {
			q.notes = append(q.notes[:i], q.notes[i+1:]...)
			return
		}
	}
}

// List returns the live notifications for rendering, pruning expired entries.
func (q *NotificationQueue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := q.now().Add(-q.ttl)
	live := q.notes[:0]
	for _, n := range q.notes {
		if n.CreatedAt.After(cutoff) {
			live = append(live, n)
		}
	}
	q.notes = live
	out := make([]Notification, len(q.notes))
	copy(out, q.notes)
	return out
}
