package node

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"
	"github.com/setwise/setkv/db"
	"github.com/setwise/setkv/log"
	"github.com/setwise/setkv/resp"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Server owns the keyspace, the command table, the keyspace event publisher
// and the replication sink. Command execution is single threaded: connection
// goroutines only parse, and every command runs to completion under mu before
// the next one starts.
type Server struct {
	port     int
	db       *db.RedisDb
	commands *db.HashTable[string, *Command]

	mu           sync.Mutex
	dirty        uint64 // changes to the DB since the last save
	keysModified uint64

	notifier *Notifier
	repl     ReplSink

	ln           net.Listener
	nextClientID uint64
}

func NewServer(port int, rdb *db.RedisDb) *Server {
	s := &Server{
		port:     port,
		db:       rdb,
		commands: db.NewHashTable[string, *Command](64),
		notifier: NewNotifier(),
		repl:     NewReplLog(),
	}
	s.populateCommandTable()
	return s
}

func (s *Server) populateCommandTable() {
	for _, cmd := range commandTable {
		s.commands.Set(cmd.Name, cmd)
	}
}

// DB returns the server's database.
func (s *Server) DB() *db.RedisDb {
	return s.db
}

// Dirty returns the mutation counter.
func (s *Server) Dirty() uint64 {
	return s.dirty
}

// KeysModified returns how many key-modified signals have fired.
func (s *Server) KeysModified() uint64 {
	return s.keysModified
}

// Notifier exposes the keyspace event publisher.
func (s *Server) Notifier() *Notifier {
	return s.notifier
}

// SetReplSink replaces the replication sink.
func (s *Server) SetReplSink(sink ReplSink) {
	s.repl = sink
}

// SignalModifiedKey records that key changed, for WATCH-style observers.
func (s *Server) SignalModifiedKey(rdb *db.RedisDb, key string) {
	s.keysModified++
	log.Logger.Debug("key modified", zap.String("key", key), zap.Uint64("db", rdb.ID()))
}

// NotifyKeyspaceEvent publishes a keyspace event after a successful mutation.
func (s *Server) NotifyKeyspaceEvent(class EventClass, event, key string, dbid uint64) {
	s.notifier.Publish(KeyspaceEvent{Class: class, Event: event, Key: key, DB: dbid})
}

// Run listens and serves until the listener is closed.
func (s *Server) Run() error {
	lc := net.ListenConfig{
		Control: func(network, address string, rc syscall.RawConn) error {
			var serr error
			err := rc.Control(func(fd uintptr) {
				serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return serr
		},
	}
	ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return errors.Wrapf(err, "listen on port %d", s.port)
	}
	s.ln = ln

	log.Logger.Info("listening", zap.Int("port", s.port))
	for {
		nc, err := ln.Accept()
		if err != nil {
			log.Logger.Info("shutting down server")
			return nil
		}
		go s.serveConn(nc)
	}
}

// Stop closes the listener.
func (s *Server) Stop() {
	if s.ln != nil {
		s.ln.Close()
	}
}

// Addr returns the listen address once Run has bound it.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) serveConn(nc net.Conn) {
	defer nc.Close()
	r := bufio.NewReader(nc)
	c := NewClient(atomic.AddUint64(&s.nextClientID, 1), &netConn{nc: nc}, s.db)
	log.Logger.Debug("client connected", zap.Uint64("id", c.id), zap.String("addr", c.connection.Ip()))

	for {
		argv, err := resp.ReadCommand(r)
		if err != nil {
			log.Logger.Debug("client disconnected", zap.Uint64("id", c.id))
			return
		}
		if len(argv) == 0 {
			continue
		}
		c.setArgs(argv)
		s.ProcessCommand(c)
		if err := c.flush(); err != nil {
			return
		}
	}
}

// ProcessCommand looks up the command named by c.argv, validates it, and
// executes it with the keyspace locked.
func (s *Server) ProcessCommand(c *Client) {
	name := strings.ToLower(c.argv[0].StringValue())
	cmd, ok := s.commands.Get(name)
	if !ok {
		c.addReplyErrorFormat("unknown command '%s'", name)
		return
	}
	if (cmd.Arity > 0 && c.argc != cmd.Arity) || c.argc < -cmd.Arity {
		c.addReplyErrorFormat("wrong number of arguments for '%s' command", cmd.Name)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.call(c, cmd)
}

// call executes the command and settles propagation: a mutating command is
// fed to the replication sink, as itself, as its rewritten vector, or not at
// all when only its derivatives should reach the replicas.
func (s *Server) call(c *Client, cmd *Command) {
	dirtyBefore := s.dirty
	c.resetPropagation()

	cmd.Proc(s, c)

	if s.dirty > dirtyBefore && !c.preventProp {
		argv := c.argv
		if c.rewrittenArgv != nil {
			argv = c.rewrittenArgv
		}
		s.feedReplication(argv)
	}
	for _, op := range c.alsoPropagate {
		s.feedReplication(op)
	}
}

// ExecCommand runs a single command on an embedded client and returns the raw
// reply bytes. This is the entry point replay and tests use.
func (s *Server) ExecCommand(args ...string) []byte {
	c := NewClient(atomic.AddUint64(&s.nextClientID, 1), nil, s.db)
	argv := make([][]byte, len(args))
	for i, a := range args {
		argv[i] = []byte(a)
	}
	c.setArgs(argv)
	s.ProcessCommand(c)
	return c.TakeReply()
}
