package node

import (
	"strconv"

	"github.com/setwise/setkv/db"
)

/* ===================== Creation and parsing of objects ==================== */

func createObject(t db.ObjectType, ptr any) *db.RedisObj {
	return db.NewRedisObj(t, db.EncodingRaw, ptr, 0)
}

// createStringObject creates a raw string object.
func createStringObject(ptr string) *db.RedisObj {
	return createObject(db.StringType, ptr)
}

// ll2String renders a length or integer reply header: prefix, decimal, CRLF.
func ll2String(prefix byte, ll int64) []byte {
	s := strconv.FormatInt(ll, 10)

	buf := make([]byte, 1+len(s)+2)
	buf[0] = prefix
	copy(buf[1:], s)
	buf[len(s)+1] = '\r'
	buf[len(s)+2] = '\n'
	return buf
}
