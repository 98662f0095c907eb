package node

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/setwise/setkv/db"
	"github.com/tidwall/match"
)

/*-----------------------------------------------------------------------------
 * Set Commands
 *----------------------------------------------------------------------------*/

// SetCmd handles set commands against one client's argument vector.
type SetCmd struct {
	srv *Server
	c   *Client
	db  *db.RedisDb
}

// NewSetCmd returns a new SetCmd.
func NewSetCmd(srv *Server, c *Client) *SetCmd {
	return &SetCmd{srv: srv, c: c, db: c.db}
}

func saddCommand(srv *Server, c *Client)             { NewSetCmd(srv, c).SAdd() }
func sremCommand(srv *Server, c *Client)             { NewSetCmd(srv, c).SRem() }
func sismemberCommand(srv *Server, c *Client)        { NewSetCmd(srv, c).SIsMember() }
func scardCommand(srv *Server, c *Client)            { NewSetCmd(srv, c).SCard() }
func smoveCommand(srv *Server, c *Client)            { NewSetCmd(srv, c).SMove() }
func spopCommand(srv *Server, c *Client)             { NewSetCmd(srv, c).SPop() }
func srandmemberCommand(srv *Server, c *Client)      { NewSetCmd(srv, c).SRandMember() }
func srandmemberstoreCommand(srv *Server, c *Client) { NewSetCmd(srv, c).SRandMemberStore() }
func smembersCommand(srv *Server, c *Client) {
	cmd := NewSetCmd(srv, c)
	cmd.sunionDiffGeneric([]string{c.argv[1].StringValue()}, "", opUnion)
}
func sinterCommand(srv *Server, c *Client) {
	cmd := NewSetCmd(srv, c)
	cmd.sinterGeneric(keyArgs(c, 1), "")
}
func sinterstoreCommand(srv *Server, c *Client) {
	cmd := NewSetCmd(srv, c)
	cmd.sinterGeneric(keyArgs(c, 2), c.argv[1].StringValue())
}
func sunionCommand(srv *Server, c *Client) {
	cmd := NewSetCmd(srv, c)
	cmd.sunionDiffGeneric(keyArgs(c, 1), "", opUnion)
}
func sunionstoreCommand(srv *Server, c *Client) {
	cmd := NewSetCmd(srv, c)
	cmd.sunionDiffGeneric(keyArgs(c, 2), c.argv[1].StringValue(), opUnion)
}
func sdiffCommand(srv *Server, c *Client) {
	cmd := NewSetCmd(srv, c)
	cmd.sunionDiffGeneric(keyArgs(c, 1), "", opDiff)
}
func sdiffstoreCommand(srv *Server, c *Client) {
	cmd := NewSetCmd(srv, c)
	cmd.sunionDiffGeneric(keyArgs(c, 2), c.argv[1].StringValue(), opDiff)
}
func sscanCommand(srv *Server, c *Client) { NewSetCmd(srv, c).SScan() }

// keyArgs collects argv[from:] as key names.
func keyArgs(c *Client, from int) []string {
	keys := make([]string, 0, c.argc-from)
	for j := from; j < c.argc; j++ {
		keys = append(keys, c.argv[j].StringValue())
	}
	return keys
}

/* ============================ Command helpers ============================= */

// lookupReadOrReply fetches key for reading, emitting the given empty reply
// when it is missing.
func (cmd *SetCmd) lookupReadOrReply(key string, emptyReply []byte) (*db.RedisObj, bool) {
	o, ok := cmd.db.LookupKeyRead(key)
	if !ok {
		cmd.c.AddReply(emptyReply)
		return nil, false
	}
	return o, true
}

func (cmd *SetCmd) lookupWriteOrReply(key string, emptyReply []byte) (*db.RedisObj, bool) {
	o, ok := cmd.db.LookupKeyWrite(key)
	if !ok {
		cmd.c.AddReply(emptyReply)
		return nil, false
	}
	return o, true
}

// checkType replies WRONGTYPE and returns true when o is not a set.
func (cmd *SetCmd) checkType(o *db.RedisObj) bool {
	if o.Type != db.SetType {
		cmd.c.AddReply(sharedWrongTypeErr)
		return true
	}
	return false
}

// getCountOrReply parses a count argument as a signed 64-bit decimal.
// A malformed count is a syntax error; a negative count is out of range
// unless the command gives it with-replacement semantics.
func (cmd *SetCmd) getCountOrReply(o *db.RedisObj, allowNegative bool) (int64, bool) {
	l, ok := o.IntValue()
	if !ok {
		var err error
		l, err = strconv.ParseInt(o.StringValue(), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				cmd.c.AddReply(sharedOutOfRangeErr)
			} else {
				cmd.c.AddReply(sharedSyntaxErr)
			}
			return 0, false
		}
	}
	if l < 0 && !allowNegative {
		cmd.c.AddReply(sharedOutOfRangeErr)
		return 0, false
	}
	return l, true
}

// setContainsElement probes membership of an iterator element, using the
// integer fast paths when both sides allow it: intset against intset element,
// or an integer-representable element against an intset.
func setContainsElement(s *db.Set, e db.SetElement) bool {
	if e.Encoding == db.EncodingInt {
		if s.Encoding() == db.EncodingIntSet {
			// intset with intset is simple... and fast
			return s.IntsetFind(e.Int)
		}
		return s.Contains(e.Obj())
	}
	if s.Encoding() == db.EncodingIntSet {
		if v, ok := db.ParseStrictInt64(e.Str); ok {
			return s.IntsetFind(v)
		}
		return false
	}
	return s.Contains(e.Obj())
}

// addReplyElement emits one iterator element as a bulk reply.
func (c *Client) addReplyElement(e db.SetElement) {
	if e.Encoding == db.EncodingInt {
		c.AddReplyBulkLongLong(e.Int)
	} else {
		c.AddReplyBulkString(e.Str)
	}
}

/* ============================= Single key ops ============================= */

func (cmd *SetCmd) SAdd() {
	c, srv := cmd.c, cmd.srv
	key := c.argv[1].StringValue()

	obj, exist := cmd.db.LookupKeyWrite(key)
	var set *db.Set
	if !exist {
		set = db.NewSetFor(db.TryObjectEncoding(c.argv[2]))
		obj = db.NewSetObj(set)
		cmd.db.Add(key, obj)
	} else {
		if cmd.checkType(obj) {
			return
		}
		set = obj.Set()
	}

	added := int64(0)
	for j := 2; j < c.argc; j++ {
		c.argv[j] = db.TryObjectEncoding(c.argv[j])
		if set.Add(c.argv[j]) {
			added++
		}
	}
	if added > 0 {
		srv.SignalModifiedKey(cmd.db, key)
		srv.NotifyKeyspaceEvent(ClassSet, "sadd", key, cmd.db.ID())
	}
	srv.dirty += uint64(added)
	c.AddReplyLongLong(added)
}

func (cmd *SetCmd) SRem() {
	c, srv := cmd.c, cmd.srv
	key := c.argv[1].StringValue()

	obj, ok := cmd.lookupWriteOrReply(key, sharedCZero)
	if !ok || cmd.checkType(obj) {
		return
	}
	set := obj.Set()

	deleted := int64(0)
	keyremoved := false
	for j := 2; j < c.argc; j++ {
		c.argv[j] = db.TryObjectEncoding(c.argv[j])
		if set.Remove(c.argv[j]) {
			deleted++
			if set.Size() == 0 {
				cmd.db.Delete(key)
				keyremoved = true
				break
			}
		}
	}
	if deleted > 0 {
		srv.SignalModifiedKey(cmd.db, key)
		srv.NotifyKeyspaceEvent(ClassSet, "srem", key, cmd.db.ID())
		if keyremoved {
			srv.NotifyKeyspaceEvent(ClassGeneric, "del", key, cmd.db.ID())
		}
		srv.dirty += uint64(deleted)
	}
	c.AddReplyLongLong(deleted)
}

func (cmd *SetCmd) SIsMember() {
	c := cmd.c
	obj, ok := cmd.lookupReadOrReply(c.argv[1].StringValue(), sharedCZero)
	if !ok || cmd.checkType(obj) {
		return
	}

	c.argv[2] = db.TryObjectEncoding(c.argv[2])
	if obj.Set().Contains(c.argv[2]) {
		c.AddReply(sharedCOne)
	} else {
		c.AddReply(sharedCZero)
	}
}

func (cmd *SetCmd) SCard() {
	c := cmd.c
	obj, ok := cmd.lookupReadOrReply(c.argv[1].StringValue(), sharedCZero)
	if !ok || cmd.checkType(obj) {
		return
	}
	c.AddReplyLongLong(int64(obj.Set().Size()))
}

func (cmd *SetCmd) SMove() {
	c, srv := cmd.c, cmd.srv
	srcKey := c.argv[1].StringValue()
	dstKey := c.argv[2].StringValue()

	srcObj, srcExist := cmd.db.LookupKeyWrite(srcKey)
	dstObj, dstExist := cmd.db.LookupKeyWrite(dstKey)
	ele := db.TryObjectEncoding(c.argv[3])
	c.argv[3] = ele

	// If the source key does not exist return 0
	if !srcExist {
		c.AddReply(sharedCZero)
		return
	}

	// If the source key has the wrong type, or the destination key
	// is set and has the wrong type, return with an error.
	if cmd.checkType(srcObj) || (dstExist && cmd.checkType(dstObj)) {
		return
	}

	// If srcset and dstset are the same object, SMOVE is a no-op.
	if srcObj == dstObj {
		if srcObj.Set().Contains(ele) {
			c.AddReply(sharedCOne)
		} else {
			c.AddReply(sharedCZero)
		}
		return
	}

	// If the element cannot be removed from the src set, return 0.
	if !srcObj.Set().Remove(ele) {
		c.AddReply(sharedCZero)
		return
	}
	srv.NotifyKeyspaceEvent(ClassSet, "srem", srcKey, cmd.db.ID())

	// Remove the src set from the database when empty
	if srcObj.Set().Size() == 0 {
		cmd.db.Delete(srcKey)
		srv.NotifyKeyspaceEvent(ClassGeneric, "del", srcKey, cmd.db.ID())
	}
	srv.SignalModifiedKey(cmd.db, srcKey)
	srv.SignalModifiedKey(cmd.db, dstKey)
	srv.dirty++

	// Create the destination set when it doesn't exist
	if !dstExist {
		dstObj = db.NewSetObj(db.NewSetFor(ele))
		cmd.db.Add(dstKey, dstObj)
	}

	// An extra key has changed when ele was successfully added to dstset
	if dstObj.Set().Add(ele) {
		srv.dirty++
		srv.NotifyKeyspaceEvent(ClassSet, "sadd", dstKey, cmd.db.ID())
	}
	c.AddReply(sharedCOne)
}

/* ================================= SPOP =================================== */

// How many times bigger should be the set compared to the remaining size for
// us to use the "create new set" strategy. See spopWithCount.
const spopMoveStrategyMul = 5

func (cmd *SetCmd) SPop() {
	c, srv := cmd.c, cmd.srv

	if c.argc == 3 {
		cmd.spopWithCount()
		return
	} else if c.argc > 3 {
		c.AddReply(sharedSyntaxErr)
		return
	}

	key := c.argv[1].StringValue()
	obj, ok := cmd.lookupWriteOrReply(key, sharedNullBulk)
	if !ok || cmd.checkType(obj) {
		return
	}
	set := obj.Set()

	// Get a random element and materialize it before mutating: removal may
	// invalidate borrowed handles.
	ele := set.Random().Obj()
	set.Remove(ele)

	srv.NotifyKeyspaceEvent(ClassSet, "spop", key, cmd.db.ID())

	// Replicate/AOF this command as an SREM operation
	srv.RewriteClientCommandVector(c, sharedSRem, c.argv[1], ele)

	c.AddReplyBulkObj(ele)

	// Delete the set if it's empty
	if set.Size() == 0 {
		cmd.db.Delete(key)
		srv.NotifyKeyspaceEvent(ClassGeneric, "del", key, cmd.db.ID())
	}

	srv.SignalModifiedKey(cmd.db, key)
	srv.dirty++
}

// spopWithCount handles the "SPOP key <count>" variant.
func (cmd *SetCmd) spopWithCount() {
	c, srv := cmd.c, cmd.srv
	key := c.argv[1].StringValue()

	l, ok := cmd.getCountOrReply(c.argv[2], false)
	if !ok {
		return
	}
	count := uint64(l)

	obj, ok := cmd.lookupReadOrReply(key, sharedEmptyMultiBulk)
	if !ok || cmd.checkType(obj) {
		return
	}
	set := obj.Set()

	// If count is zero, serve an empty multibulk ASAP to avoid special
	// cases later.
	if count == 0 {
		c.AddReply(sharedEmptyMultiBulk)
		return
	}

	size := uint64(set.Size())

	srv.NotifyKeyspaceEvent(ClassSet, "spop", key, cmd.db.ID())
	srv.dirty += count

	// CASE 1:
	// The number of requested elements is greater than or equal to
	// the number of elements inside the set: simply return the whole set.
	if count >= size {
		cmd.sunionDiffGeneric([]string{key}, "", opUnion)

		// Delete the set as it is now empty
		cmd.db.Delete(key)
		srv.NotifyKeyspaceEvent(ClassGeneric, "del", key, cmd.db.ID())

		// Propagate this command as a DEL operation
		srv.RewriteClientCommandVector(c, sharedDel, c.argv[1])
		srv.SignalModifiedKey(cmd.db, key)
		srv.dirty++
		return
	}

	// Cases 2 and 3 replicate SPOP as a sequence of SREM commands.
	c.AddReplyMultiBulkLen(int64(count))
	remaining := size - count // Elements left after SPOP.

	if remaining*spopMoveStrategyMul > count {
		// CASE 2: the number of elements to return is small compared to the
		// set size. Extract random elements, reply and remove them.
		for ; count > 0; count-- {
			ele := set.Random().Obj()
			c.AddReplyBulkObj(ele)
			set.Remove(ele)
			srv.AlsoPropagate(c, sharedSRem, c.argv[1], ele)
		}
	} else {
		// CASE 3: the requested count approaches the set size. Extracting
		// random elements by rejection degrades, so draw the elements that
		// will REMAIN into a fresh set, swap it in as the key's value, and
		// return the complement from the old set.
		var newset *db.Set
		for ; remaining > 0; remaining-- {
			ele := set.Random().Obj()
			if newset == nil {
				newset = db.NewSetFor(ele)
			}
			newset.Add(ele)
			set.Remove(ele)
		}

		cmd.db.Overwrite(key, db.NewSetObj(newset))

		// Transfer the old set to the client.
		it := set.Iterator()
		for e, more := it.Next(); more; e, more = it.Next() {
			ele := e.Obj()
			c.AddReplyBulkObj(ele)
			srv.AlsoPropagate(c, sharedSRem, c.argv[1], ele)
		}
	}

	srv.SignalModifiedKey(cmd.db, key)

	// Don't propagate the command itself even though the dirty counter
	// advanced: it was propagated as a sequence of SREM operations.
	srv.PreventCommandPropagation(c)
}

/* ============================== SRANDMEMBER =============================== */

// How many times bigger should be the set compared to the requested size for
// us to not use the "remove elements" strategy. See srandmemberWithCount.
const srandmemberSubStrategyMul = 3

func (cmd *SetCmd) SRandMember() {
	c := cmd.c

	if c.argc == 3 {
		cmd.srandmemberWithCount()
		return
	} else if c.argc > 3 {
		c.AddReply(sharedSyntaxErr)
		return
	}

	obj, ok := cmd.lookupReadOrReply(c.argv[1].StringValue(), sharedNullBulk)
	if !ok || cmd.checkType(obj) {
		return
	}
	c.addReplyElement(obj.Set().Random())
}

// pickRandomMembers draws members of set into a fresh temporary set following
// the two unique-draw strategies: when count is a large fraction of size,
// copy everything and subtract random members down to count; otherwise sample
// random members until count distinct ones accumulate.
func pickRandomMembers(set *db.Set, count, size uint64) *db.Set {
	d := db.NewHashSet(int(count))

	if count*srandmemberSubStrategyMul > size {
		// Build-and-subtract.
		it := set.Iterator()
		for e, more := it.Next(); more; e, more = it.Next() {
			d.Add(e.Obj())
		}
		for uint64(d.Size()) > count {
			d.Remove(d.Random().Obj())
		}
	} else {
		// Sample-until-unique.
		for uint64(d.Size()) < count {
			d.Add(set.Random().Obj())
		}
	}
	return d
}

// srandmemberWithCount handles the "SRANDMEMBER key <count>" variant.
func (cmd *SetCmd) srandmemberWithCount() {
	c := cmd.c

	l, ok := cmd.getCountOrReply(c.argv[2], true)
	if !ok {
		return
	}
	uniq := true
	var count uint64
	if l >= 0 {
		count = uint64(l)
	} else {
		// A negative count means: return the same elements multiple times,
		// i.e. sample the whole set on every extraction.
		count = uint64(-l)
		uniq = false
	}

	obj, ok := cmd.lookupReadOrReply(c.argv[1].StringValue(), sharedEmptyMultiBulk)
	if !ok || cmd.checkType(obj) {
		return
	}
	set := obj.Set()
	size := uint64(set.Size())

	// If count is zero, serve it ASAP to avoid special cases later.
	if count == 0 {
		c.AddReply(sharedEmptyMultiBulk)
		return
	}

	// CASE 1: negative count, independent uniform draws with repetition.
	if !uniq {
		c.AddReplyMultiBulkLen(int64(count))
		for ; count > 0; count-- {
			c.addReplyElement(set.Random())
		}
		return
	}

	// CASE 2: the requested count covers the set, return the whole set.
	if count >= size {
		cmd.sunionDiffGeneric([]string{c.argv[1].StringValue()}, "", opUnion)
		return
	}

	// CASE 3 and CASE 4: unique draws through a temporary set.
	d := pickRandomMembers(set, count, size)

	c.AddReplyMultiBulkLen(int64(count))
	it := d.Iterator()
	for e, more := it.Next(); more; e, more = it.Next() {
		c.addReplyElement(e)
	}
}

// SRandMemberStore is the destructive-output variant of SRANDMEMBER: the
// chosen elements are written as a new set at the destination key instead of
// being replied, and the reply is the resulting cardinality.
func (cmd *SetCmd) SRandMemberStore() {
	c := cmd.c
	dstKey := c.argv[1].StringValue()
	srcKey := c.argv[2].StringValue()

	l, ok := cmd.getCountOrReply(c.argv[3], true)
	if !ok {
		return
	}
	uniq := true
	var count uint64
	if l >= 0 {
		count = uint64(l)
	} else {
		count = uint64(-l)
		uniq = false
	}

	dstset := db.NewIntsetSet()

	if srcObj, srcExist := cmd.db.LookupKeyRead(srcKey); srcExist {
		if cmd.checkType(srcObj) {
			return
		}
		set := srcObj.Set()
		size := uint64(set.Size())

		switch {
		case count == 0:
			// Empty selection; the store tail below settles the destination.
		case !uniq:
			// With-replacement draws; the destination set deduplicates.
			for ; count > 0; count-- {
				dstset.Add(set.Random().Obj())
			}
		case count >= size:
			// The whole source set.
			it := set.Iterator()
			for e, more := it.Next(); more; e, more = it.Next() {
				dstset.Add(e.Obj())
			}
		default:
			d := pickRandomMembers(set, count, size)
			it := d.Iterator()
			for e, more := it.Next(); more; e, more = it.Next() {
				dstset.Add(e.Obj())
			}
		}
	}
	// A missing source behaves as an empty selection: the destination is
	// replaced by nothing, i.e. deleted.

	// The selection is random: replicate it as a DEL of the destination
	// followed by an SADD of exactly the chosen members.
	cmd.srv.PreventCommandPropagation(c)
	cmd.srv.AlsoPropagate(c, sharedDel, c.argv[1])
	if dstset.Size() > 0 {
		argv := []*db.RedisObj{createStringObject("SADD"), c.argv[1]}
		it := dstset.Iterator()
		for e, more := it.Next(); more; e, more = it.Next() {
			argv = append(argv, e.Obj())
		}
		cmd.srv.AlsoPropagate(c, argv...)
	}

	cmd.storeResult(dstKey, dstset, "srandmemberstore")
}

/* ============================= Multi key ops ============================== */

const (
	opUnion = iota
	opDiff
)

// lookupSourceSets resolves the named source keys. Missing keys yield nil
// entries when missingOk, otherwise the lookup stops with missing=true and no
// reply. A wrong-typed key aborts with a WRONGTYPE reply in either mode.
func (cmd *SetCmd) lookupSourceSets(keys []string, forWrite, missingOk bool) (sets []*db.Set, missing bool) {
	sets = make([]*db.Set, len(keys))
	for j, key := range keys {
		var obj *db.RedisObj
		var ok bool
		if forWrite {
			obj, ok = cmd.db.LookupKeyWrite(key)
		} else {
			obj, ok = cmd.db.LookupKeyRead(key)
		}
		if !ok {
			if missingOk {
				sets[j] = nil
				continue
			}
			return nil, true
		}
		if cmd.checkType(obj) {
			return nil, false
		}
		sets[j] = obj.Set()
	}
	return sets, false
}

// storeResult installs dstset under dstKey, or deletes the destination when
// the result is empty. The reply is the resulting cardinality.
func (cmd *SetCmd) storeResult(dstKey string, dstset *db.Set, event string) {
	c, srv := cmd.c, cmd.srv

	deleted := cmd.db.Delete(dstKey)
	if dstset.Size() > 0 {
		cmd.db.Add(dstKey, db.NewSetObj(dstset))
		c.AddReplyLongLong(int64(dstset.Size()))
		srv.NotifyKeyspaceEvent(ClassSet, event, dstKey, cmd.db.ID())
	} else {
		c.AddReply(sharedCZero)
		if deleted {
			srv.NotifyKeyspaceEvent(ClassGeneric, "del", dstKey, cmd.db.ID())
		}
	}
	srv.SignalModifiedKey(cmd.db, dstKey)
	srv.dirty++
}

func (cmd *SetCmd) sinterGeneric(setkeys []string, dstKey string) {
	c, srv := cmd.c, cmd.srv

	sets, missing := cmd.lookupSourceSets(setkeys, dstKey != "", false)
	if sets == nil {
		if !missing {
			// WRONGTYPE already replied.
			return
		}
		// A missing source makes the intersection empty.
		if dstKey != "" {
			if cmd.db.Delete(dstKey) {
				srv.SignalModifiedKey(cmd.db, dstKey)
				srv.dirty++
			}
			c.AddReply(sharedCZero)
		} else {
			c.AddReply(sharedEmptyMultiBulk)
		}
		return
	}

	// Sort sets from the smallest to largest, this will improve our
	// algorithm's performance.
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].Size() < sets[j].Size()
	})

	// The output length is not known before traversing, so in reply mode
	// reserve a length slot and backfill it afterwards.
	var replyLen *db.ListNode[[]byte]
	var dstset *db.Set
	if dstKey == "" {
		replyLen = c.AddDeferredMultiBulkLen()
	} else {
		dstset = db.NewIntsetSet()
	}

	// Iterate all the elements of the first (smallest) set, and test
	// the element against all the other sets: if at least one set does
	// not include the element it is discarded.
	cardinality := int64(0)
	it := sets[0].Iterator()
	for e, more := it.Next(); more; e, more = it.Next() {
		included := true
		for j := 1; j < len(sets); j++ {
			if sets[j] == sets[0] {
				continue
			}
			if !setContainsElement(sets[j], e) {
				included = false
				break
			}
		}
		if !included {
			continue
		}
		if dstKey == "" {
			c.addReplyElement(e)
			cardinality++
		} else {
			dstset.Add(e.Obj())
		}
	}

	if dstKey != "" {
		cmd.storeResult(dstKey, dstset, "sinterstore")
	} else {
		c.SetDeferredMultiBulkLen(replyLen, cardinality)
	}
}

func setSizeOrZero(s *db.Set) int {
	if s == nil {
		return 0
	}
	return s.Size()
}

func (cmd *SetCmd) sunionDiffGeneric(setkeys []string, dstKey string, op int) {
	c := cmd.c

	sets, _ := cmd.lookupSourceSets(setkeys, dstKey != "", true)
	if sets == nil {
		return
	}

	// Select what DIFF algorithm to use.
	//
	// Algorithm 1 is O(N*M) where N is the size of the first set and M the
	// total number of sets, probing every other set per element.
	//
	// Algorithm 2 is O(N) on the total number of elements in all the sets,
	// subtracting each later set from a copy of the first.
	diffAlgo := 1
	if op == opDiff && sets[0] != nil {
		algoOneWork, algoTwoWork := 0, 0
		for j := range sets {
			if sets[j] == nil {
				continue
			}
			algoOneWork += sets[0].Size()
			algoTwoWork += sets[j].Size()
		}
		// Algorithm 1 has better constant times and performs less operations
		// if there are elements in common. Give it some advantage.
		algoOneWork /= 2
		if algoOneWork <= algoTwoWork {
			diffAlgo = 1
		} else {
			diffAlgo = 2
		}

		if diffAlgo == 1 && len(sets) > 1 {
			// With algorithm 1 it is better to order the sets to subtract by
			// decreasing size, so duplicated elements are found ASAP.
			rest := sets[1:]
			sort.SliceStable(rest, func(i, j int) bool {
				return setSizeOrZero(rest[i]) > setSizeOrZero(rest[j])
			})
		}
	}

	// The temporary set holding the result; in STORE mode it becomes the
	// value installed under the destination key.
	dstset := db.NewIntsetSet()
	cardinality := int64(0)

	if op == opUnion {
		// Union is trivial, just add every element of every set to the
		// temporary set.
		for j := range sets {
			if sets[j] == nil {
				continue // non existing keys are like empty sets
			}
			it := sets[j].Iterator()
			for e, more := it.Next(); more; e, more = it.Next() {
				if dstset.Add(e.Obj()) {
					cardinality++
				}
			}
		}
	} else if op == opDiff && sets[0] != nil && diffAlgo == 1 {
		// DIFF Algorithm 1: for each element of the first set probe every
		// other set; keep the element only when no other set contains it.
		it := sets[0].Iterator()
		for e, more := it.Next(); more; e, more = it.Next() {
			absent := true
			for j := 1; j < len(sets); j++ {
				if sets[j] == nil {
					continue // no key is an empty set
				}
				if sets[j] == sets[0] {
					absent = false // same set!
					break
				}
				if setContainsElement(sets[j], e) {
					absent = false
					break
				}
			}
			if absent {
				dstset.Add(e.Obj())
				cardinality++
			}
		}
	} else if op == opDiff && sets[0] != nil && diffAlgo == 2 {
		// DIFF Algorithm 2: copy the first set, then subtract every element
		// of every other set from it.
		for j := range sets {
			if sets[j] == nil {
				continue // non existing keys are like empty sets
			}
			it := sets[j].Iterator()
			for e, more := it.Next(); more; e, more = it.Next() {
				if j == 0 {
					if dstset.Add(e.Obj()) {
						cardinality++
					}
				} else {
					if dstset.Remove(e.Obj()) {
						cardinality--
					}
				}
			}

			// Exit if result set is empty as any additional removal
			// of elements will have no effect.
			if j > 0 && cardinality == 0 {
				break
			}
		}
	}

	// Output the content of the resulting set, if not in STORE mode
	if dstKey == "" {
		c.AddReplyMultiBulkLen(cardinality)
		it := dstset.Iterator()
		for e, more := it.Next(); more; e, more = it.Next() {
			c.addReplyElement(e)
		}
		return
	}

	event := "sunionstore"
	if op == opDiff {
		event = "sdiffstore"
	}
	cmd.storeResult(dstKey, dstset, event)
}

/* ================================= SSCAN ================================== */

const sscanDefaultCount = 10

func (cmd *SetCmd) SScan() {
	c := cmd.c

	cursor, err := strconv.ParseUint(c.argv[2].StringValue(), 10, 64)
	if err != nil {
		c.AddReply(sharedInvalidCursor)
		return
	}

	pattern := ""
	count := sscanDefaultCount
	for i := 3; i < c.argc; i++ {
		opt := strings.ToLower(c.argv[i].StringValue())
		switch {
		case opt == "match" && i+1 < c.argc:
			i++
			pattern = c.argv[i].StringValue()
		case opt == "count" && i+1 < c.argc:
			i++
			n, err := strconv.Atoi(c.argv[i].StringValue())
			if err != nil || n < 1 {
				c.AddReply(sharedSyntaxErr)
				return
			}
			count = n
		default:
			c.AddReply(sharedSyntaxErr)
			return
		}
	}

	obj, ok := cmd.lookupReadOrReply(c.argv[1].StringValue(), sharedEmptyScan)
	if !ok || cmd.checkType(obj) {
		return
	}
	set := obj.Set()

	var members []string
	next := set.Scan(cursor, count, func(member string) {
		if pattern == "" || match.Match(member, pattern) {
			members = append(members, member)
		}
	})

	c.AddReplyMultiBulkLen(2)
	c.AddReplyBulkString(strconv.FormatUint(next, 10))
	c.AddReplyMultiBulkLen(int64(len(members)))
	for _, m := range members {
		c.AddReplyBulkString(m)
	}
}
