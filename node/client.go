package node

import (
	"fmt"

	"github.com/setwise/setkv/db"
	"github.com/setwise/setkv/resp"
)

// Client carries the state of one command execution: the argument vector,
// the reply segments queued for the connection, and the propagation bookkeeping
// of the currently executing command.
type Client struct {
	id         uint64
	connection Conn        // nil for embedded clients (tests, replay)
	db         *db.RedisDb // pointer to currently SELECTed DB
	argv       []*db.RedisObj
	argc       int

	replies *db.List[[]byte] // reply segments to send to the client

	// Propagation state of the current command, consumed by Server.call.
	alsoPropagate [][]*db.RedisObj
	rewrittenArgv []*db.RedisObj
	preventProp   bool
}

func NewClient(id uint64, connection Conn, rdb *db.RedisDb) *Client {
	return &Client{
		id:         id,
		connection: connection,
		db:         rdb,
		replies:    db.NewList[[]byte](),
	}
}

func (c *Client) GetID() uint64 {
	return c.id
}

// setArgs installs the next command's argument vector.
func (c *Client) setArgs(argv [][]byte) {
	c.argv = c.argv[:0]
	for _, arg := range argv {
		c.argv = append(c.argv, createStringObject(string(arg)))
	}
	c.argc = len(c.argv)
}

// resetPropagation clears the per-command propagation state.
func (c *Client) resetPropagation() {
	c.alsoPropagate = nil
	c.rewrittenArgv = nil
	c.preventProp = false
}

/* -----------------------------------------------------------------------------
 * Higher level functions to queue data on the client output buffer.
 * The following functions are the ones that commands implementations will call.
 * -------------------------------------------------------------------------- */

// AddReply queues a preformatted protocol fragment.
func (c *Client) AddReply(proto []byte) {
	c.replies.AddNodeTail(proto)
}

// AddReplyLongLong emits an integer reply, reusing the shared 0/1 fragments.
func (c *Client) AddReplyLongLong(ll int64) {
	switch ll {
	case 0:
		c.AddReply(sharedCZero)
	case 1:
		c.AddReply(sharedCOne)
	default:
		c.AddReply(ll2String(resp.TypeInteger, ll))
	}
}

// AddReplyBulkObj emits a bulk reply carrying the string form of obj.
func (c *Client) AddReplyBulkObj(obj *db.RedisObj) {
	s := obj.StringValue()
	c.AddReply(ll2String(resp.TypeBlob, int64(len(s))))
	c.AddReply([]byte(s))
	c.AddReply([]byte(resp.CRLF))
}

// AddReplyBulkString emits a bulk reply for a plain string.
func (c *Client) AddReplyBulkString(s string) {
	c.AddReply(ll2String(resp.TypeBlob, int64(len(s))))
	c.AddReply([]byte(s))
	c.AddReply([]byte(resp.CRLF))
}

// AddReplyBulkLongLong emits a bulk reply for the decimal form of ll.
func (c *Client) AddReplyBulkLongLong(ll int64) {
	c.AddReplyBulkString(fmt.Sprintf("%d", ll))
}

// AddReplyMultiBulkLen emits the *<n> header of a multi bulk reply.
func (c *Client) AddReplyMultiBulkLen(n int64) {
	c.AddReply(ll2String(resp.TypeArray, n))
}

// AddDeferredMultiBulkLen reserves a length slot in the reply stream. The
// caller backfills it with SetDeferredMultiBulkLen once the cardinality of the
// traversal is known.
func (c *Client) AddDeferredMultiBulkLen() *db.ListNode[[]byte] {
	return c.replies.AddNodeTail(nil)
}

// SetDeferredMultiBulkLen backfills a reserved length slot.
func (c *Client) SetDeferredMultiBulkLen(node *db.ListNode[[]byte], n int64) {
	node.Value = ll2String(resp.TypeArray, n)
}

// AddReplyError emits an error reply. msg must start with its error code
// ("ERR ...", "WRONGTYPE ...").
func (c *Client) AddReplyError(msg string) {
	c.AddReply([]byte(fmt.Sprintf("%c%s%s", resp.TypeError, msg, resp.CRLF)))
}

func (c *Client) addReplyErrorFormat(format string, a ...any) {
	s := fmt.Sprintf(format, a...)
	// Protocol fragments in the message would desync the stream.
	s = mapChars(s, "\r\n", "  ")
	c.AddReplyError("ERR " + s)
}

// TakeReply drains the queued reply segments into one byte slice. Used by the
// connection loop to flush, and by tests to observe replies.
func (c *Client) TakeReply() []byte {
	var out []byte
	for node := c.replies.Head; node != nil; node = node.Next {
		out = append(out, node.Value...)
	}
	c.replies = db.NewList[[]byte]()
	return out
}

// flush writes the queued reply to the connection.
func (c *Client) flush() error {
	out := c.TakeReply()
	if c.connection == nil || len(out) == 0 {
		return nil
	}
	return c.connection.Write(out)
}
