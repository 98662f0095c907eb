package node

import (
	"sync"

	"github.com/setwise/setkv/db"
	"github.com/setwise/setkv/log"
	"go.uber.org/zap"
)

// ReplSink receives the command stream destined for the append-only log and
// the replicas. Every vector fed to it is deterministic: destructive commands
// with random outcomes are rewritten before they get here.
type ReplSink interface {
	Feed(argv []string)
}

// ReplLog is the default sink: it records the propagated vectors, which is
// what the replay tests and a future replication fan-out both need.
type ReplLog struct {
	mu       sync.Mutex
	commands [][]string
}

func NewReplLog() *ReplLog {
	return &ReplLog{}
}

func (l *ReplLog) Feed(argv []string) {
	l.mu.Lock()
	l.commands = append(l.commands, argv)
	l.mu.Unlock()
	log.Logger.Debug("propagate", zap.Strings("argv", argv))
}

// Commands returns a copy of the propagated command vectors, in order.
func (l *ReplLog) Commands() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]string, len(l.commands))
	copy(out, l.commands)
	return out
}

// Reset drops the recorded stream.
func (l *ReplLog) Reset() {
	l.mu.Lock()
	l.commands = nil
	l.mu.Unlock()
}

/* -----------------------------------------------------------------------------
 * The propagation shim used by command implementations.
 * -------------------------------------------------------------------------- */

// AlsoPropagate queues an additional command vector to be propagated after
// the current command executes.
func (s *Server) AlsoPropagate(c *Client, argv ...*db.RedisObj) {
	c.alsoPropagate = append(c.alsoPropagate, argv)
}

// RewriteClientCommandVector replaces the currently executing command's
// vector before it reaches the log and the replicas.
func (s *Server) RewriteClientCommandVector(c *Client, argv ...*db.RedisObj) {
	c.rewrittenArgv = argv
}

// PreventCommandPropagation suppresses the current command: its derivatives
// have already been queued with AlsoPropagate.
func (s *Server) PreventCommandPropagation(c *Client) {
	c.preventProp = true
}

func (s *Server) feedReplication(argv []*db.RedisObj) {
	vec := make([]string, len(argv))
	for i, o := range argv {
		vec[i] = o.StringValue()
	}
	s.repl.Feed(vec)
}
