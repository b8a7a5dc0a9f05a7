package session

import (
	"sync"
	"time"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a short message addressed to one session.
type Notification struct {
	ID      uint64
	Level   Level
	Message string
	At      time.Time
}

// Notifier fans notifications out to subscribers of one session.  Slow
// subscribers drop messages instead of blocking the emitter.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan Notification
	closed bool
	buffer int
}

// NewNotifier returns a notifier whose subscriber channels hold buffer
// pending messages.
func NewNotifier(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 8
	}
	return &Notifier{subs: make(map[uint64]chan Notification), buffer: buffer}
}

// Subscribe returns a receive channel and a cancel func that closes it.
func (n *Notifier) Subscribe() (<-chan Notification, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan Notification, n.buffer)
	if n.closed {
		close(ch)
		return ch, func() {}
	}
	n.nextID++
	id := n.nextID
	n.subs[id] = ch
	return ch, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if c, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(c)
		}
	}
}

// Emit delivers a notification to every subscriber and returns it.
func (n *Notifier) Emit(level Level, message string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	note := Notification{ID: n.nextID, Level: level, Message: message, At: time.Now().UTC()}
	if n.closed {
		return note
	}
	for _, ch := range n.subs {
		select {
		case ch <- note:
		default:
		}
	}
	return note
}

// Close closes every subscriber channel.  Later emits are no-ops.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
