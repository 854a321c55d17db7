package cart

import (
	"testing"
	"time"
)

func TestNotificationQueuePushAndDismiss(t *testing.T) {
	q := NewNotificationQueue(time.Minute)

	id1 := q.Push(NoteSuccess, "Cart updated")
	id2 := q.Push(NoteError, "Network error")
	if id1 == id2 {
		t.Fatal("notification ids must be unique")
	}
	if got := len(q.List()); got != 2 {
		t.Fatalf("expected 2 notifications, got %d", got)
	}

	q.Dismiss(id1)
	live := q.List()
	if len(live) != 1 || live[0].ID != id2 {
		t.Fatalf("expected only %s to remain, got %+v", id2, live)
	}
	q.Dismiss("unknown") // ignored
	if got := len(q.List()); got != 1 {
		t.Fatalf("expected 1 notification, got %d", got)
	}
}

func TestNotificationQueueNoDeduplication(t *testing.T) {
	q := NewNotificationQueue(time.Minute)
	q.Push(NoteError, "The requested quantity is no longer available")
	q.Push(NoteError, "The requested quantity is no longer available")
	if got := len(q.List()); got != 2 {
		t.Fatalf("duplicate messages must each get an entry, got %d", got)
	}
}

func TestNotificationQueueExpiry(t *testing.T) {
	now := time.Now()
	q := NewNotificationQueue(4 * time.Second)
	q.now = func() time.Time { return now }

	q.Push(NoteInfo, "Only 5 of Ceramic Mug available")
	if got := len(q.List()); got != 1 {
		t.Fatalf("expected 1 notification, got %d", got)
	}

	now = now.Add(3 * time.Second)
	q.Push(NoteSuccess, "Cart updated")
	now = now.Add(2 * time.Second)

	live := q.List()
	if len(live) != 1 || live[0].Kind != NoteSuccess {
		t.Fatalf("expected only the later notification to survive, got %+v", live)
	}
}

func TestNotificationQueueDefaultTTL(t *testing.T) {
	q := NewNotificationQueue(0)
	if q.ttl != DefaultDisplayDuration {
		t.Fatalf("expected default ttl, got %v", q.ttl)
	}
}
