package node

import (
	"fmt"

	"github.com/setwise/setkv/resp"
)

type CommandFlags uint64

const (
	CmdWrite CommandFlags = 1 << iota
	CmdReadOnly
	CmdDenyOOM
	CmdFast
)

// CommandProc implements one command against the argument vector of c.
type CommandProc func(srv *Server, c *Client)

// Command describes one entry of the command table. Arity is the exact
// argument count when positive, or the negated minimum when negative.
type Command struct {
	Name  string
	Arity int
	Flags CommandFlags
	Proc  CommandProc
}

var commandTable = []*Command{
	{Name: "ping", Arity: -1, Flags: CmdFast, Proc: pingCommand},
	{Name: "del", Arity: -2, Flags: CmdWrite, Proc: delCommand},

	{Name: "sadd", Arity: -3, Flags: CmdWrite | CmdDenyOOM | CmdFast, Proc: saddCommand},
	{Name: "srem", Arity: -3, Flags: CmdWrite | CmdFast, Proc: sremCommand},
	{Name: "sismember", Arity: 3, Flags: CmdReadOnly | CmdFast, Proc: sismemberCommand},
	{Name: "scard", Arity: 2, Flags: CmdReadOnly | CmdFast, Proc: scardCommand},
	{Name: "smove", Arity: 4, Flags: CmdWrite | CmdFast, Proc: smoveCommand},
	{Name: "spop", Arity: -2, Flags: CmdWrite | CmdFast, Proc: spopCommand},
	{Name: "srandmember", Arity: -2, Flags: CmdReadOnly, Proc: srandmemberCommand},
	{Name: "srandmemberstore", Arity: 4, Flags: CmdWrite | CmdDenyOOM, Proc: srandmemberstoreCommand},
	{Name: "smembers", Arity: 2, Flags: CmdReadOnly, Proc: smembersCommand},
	{Name: "sinter", Arity: -2, Flags: CmdReadOnly, Proc: sinterCommand},
	{Name: "sinterstore", Arity: -3, Flags: CmdWrite | CmdDenyOOM, Proc: sinterstoreCommand},
	{Name: "sunion", Arity: -2, Flags: CmdReadOnly, Proc: sunionCommand},
	{Name: "sunionstore", Arity: -3, Flags: CmdWrite | CmdDenyOOM, Proc: sunionstoreCommand},
	{Name: "sdiff", Arity: -2, Flags: CmdReadOnly, Proc: sdiffCommand},
	{Name: "sdiffstore", Arity: -3, Flags: CmdWrite | CmdDenyOOM, Proc: sdiffstoreCommand},
	{Name: "sscan", Arity: -3, Flags: CmdReadOnly, Proc: sscanCommand},
}

var (
	// Shared command responses

	sharedOk             = []byte(fmt.Sprintf("%cOK%s", resp.TypeSimple, resp.CRLF))
	sharedPong           = []byte(fmt.Sprintf("%cPONG%s", resp.TypeSimple, resp.CRLF))
	sharedCZero          = []byte(fmt.Sprintf("%c0%s", resp.TypeInteger, resp.CRLF))
	sharedCOne           = []byte(fmt.Sprintf("%c1%s", resp.TypeInteger, resp.CRLF))
	sharedEmptyMultiBulk = []byte(fmt.Sprintf("%c0%s", resp.TypeArray, resp.CRLF))
	sharedNullBulk       = []byte(fmt.Sprintf("%c-1%s", resp.TypeBlob, resp.CRLF))
	sharedEmptyScan      = []byte(fmt.Sprintf("%c2%s%c1%s0%s%c0%s",
		resp.TypeArray, resp.CRLF, resp.TypeBlob, resp.CRLF, resp.CRLF, resp.TypeArray, resp.CRLF))

	// Shared command error responses

	sharedWrongTypeErr  = []byte(fmt.Sprintf("%cWRONGTYPE Operation against a key holding the wrong kind of value%s", resp.TypeError, resp.CRLF))
	sharedSyntaxErr     = []byte(fmt.Sprintf("%cERR syntax error%s", resp.TypeError, resp.CRLF))
	sharedOutOfRangeErr = []byte(fmt.Sprintf("%cERR index out of range%s", resp.TypeError, resp.CRLF))
	sharedInvalidCursor = []byte(fmt.Sprintf("%cERR invalid cursor%s", resp.TypeError, resp.CRLF))

	// Shared command names used when rewriting destructive commands into
	// their deterministic equivalents for the replication stream.

	sharedSRem = createStringObject("SREM")
	sharedDel  = createStringObject("DEL")
)

func pingCommand(srv *Server, c *Client) {
	if c.argc > 2 {
		c.addReplyErrorFormat("wrong number of arguments for '%s' command", "ping")
		return
	}
	if c.argc == 2 {
		c.AddReplyBulkObj(c.argv[1])
		return
	}
	c.AddReply(sharedPong)
}

// delCommand removes every named key. It also serves as the deterministic
// replay target for rewritten SPOP commands.
func delCommand(srv *Server, c *Client) {
	deleted := int64(0)
	for j := 1; j < c.argc; j++ {
		key := c.argv[j].StringValue()
		if c.db.Delete(key) {
			srv.SignalModifiedKey(c.db, key)
			srv.NotifyKeyspaceEvent(ClassGeneric, "del", key, c.db.ID())
			srv.dirty++
			deleted++
		}
	}
	c.AddReplyLongLong(deleted)
}
