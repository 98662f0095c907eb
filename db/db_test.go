package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDbAddLookupDelete(t *testing.T) {
	rdb := New(0)

	s := NewSetFor(strObj("1"))
	s.Add(strObj("1"))
	rdb.Add("s", NewSetObj(s))

	o, ok := rdb.LookupKeyRead("s")
	assert.True(t, ok)
	assert.Equal(t, SetType, o.Type)
	assert.Same(t, s, o.Set())

	_, ok = rdb.LookupKeyWrite("missing")
	assert.False(t, ok)

	assert.True(t, rdb.Delete("s"))
	assert.False(t, rdb.Delete("s"))
	_, ok = rdb.LookupKeyRead("s")
	assert.False(t, ok)
}

func TestDbOverwrite(t *testing.T) {
	rdb := New(0)

	first := NewSetFor(strObj("1"))
	first.Add(strObj("1"))
	rdb.Add("k", NewSetObj(first))

	second := NewSetFor(strObj("foo"))
	second.Add(strObj("foo"))
	rdb.Overwrite("k", NewSetObj(second))

	o, ok := rdb.LookupKeyRead("k")
	assert.True(t, ok)
	assert.Same(t, second, o.Set())
	assert.Equal(t, 1, rdb.Len())
}

func TestDbExpireBookkeeping(t *testing.T) {
	rdb := New(0)
	rdb.Add("k", NewStringObj("v"))

	assert.Equal(t, int64(-1), rdb.GetExpire("k"))
	rdb.SetExpire("k", 12345)
	assert.Equal(t, int64(12345), rdb.GetExpire("k"))
	rdb.RmExpire("k")
	assert.Equal(t, int64(-1), rdb.GetExpire("k"))

	// Expire on a missing key is ignored.
	rdb.SetExpire("missing", 1)
	assert.Equal(t, int64(-1), rdb.GetExpire("missing"))

	// Deleting the key drops its expire.
	rdb.SetExpire("k", 99)
	rdb.Delete("k")
	assert.Equal(t, int64(-1), rdb.GetExpire("k"))
}
