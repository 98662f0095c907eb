package node

import (
	"sync"

	"github.com/setwise/setkv/log"
	"go.uber.org/zap"
)

// EventClass groups keyspace events the way subscribers filter them.
type EventClass int

const (
	ClassGeneric EventClass = iota
	ClassSet
)

// KeyspaceEvent is one published mutation notification.
type KeyspaceEvent struct {
	Class EventClass
	Event string
	Key   string
	DB    uint64
}

// Notifier publishes keyspace events: it logs them at debug level and retains
// them for in-process subscribers (and tests).
type Notifier struct {
	mu     sync.Mutex
	events []KeyspaceEvent
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Publish(ev KeyspaceEvent) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
	log.Logger.Debug("keyspace event",
		zap.String("event", ev.Event),
		zap.String("key", ev.Key),
		zap.Uint64("db", ev.DB))
}

// Events returns a copy of every event published so far.
func (n *Notifier) Events() []KeyspaceEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]KeyspaceEvent, len(n.events))
	copy(out, n.events)
	return out
}

// Reset drops the retained events.
func (n *Notifier) Reset() {
	n.mu.Lock()
	n.events = nil
	n.mu.Unlock()
}
