package db

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strObj(s string) *RedisObj {
	return TryObjectEncoding(NewStringObj(s))
}

func TestParseStrictInt64(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"0", true},
		{"1", true},
		{"-1", true},
		{"9223372036854775807", true},
		{"-9223372036854775808", true},
		{"9223372036854775808", false}, // overflow
		{"+1", false},                  // sign redundancy
		{"01", false},                  // leading zero
		{"-0", false},
		{" 1", false},
		{"1 ", false},
		{"", false},
		{"abc", false},
		{"1.5", false},
	}
	for _, tc := range cases {
		_, ok := ParseStrictInt64(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
	}
}

func TestNewSetForPicksEncoding(t *testing.T) {
	assert.Equal(t, EncodingIntSet, NewSetFor(strObj("123")).Encoding())
	assert.Equal(t, EncodingHT, NewSetFor(strObj("foo")).Encoding())
	assert.Equal(t, EncodingHT, NewSetFor(strObj("+7")).Encoding())
	assert.Equal(t, EncodingHT, NewSetFor(strObj("007")).Encoding())
}

func TestSetAddContainsRemove(t *testing.T) {
	s := NewSetFor(strObj("1"))
	assert.True(t, s.Add(strObj("1")))
	assert.False(t, s.Add(strObj("1")), "second insert reports not inserted")
	assert.True(t, s.Contains(strObj("1")))
	assert.True(t, s.Remove(strObj("1")))
	assert.False(t, s.Remove(strObj("1")))
	assert.Equal(t, 0, s.Size())
}

func TestSetPromotionOnNonInteger(t *testing.T) {
	s := NewSetFor(strObj("1"))
	s.Add(strObj("1"))
	s.Add(strObj("2"))
	assert.Equal(t, EncodingIntSet, s.Encoding())

	assert.True(t, s.Add(strObj("hello")))
	assert.Equal(t, EncodingHT, s.Encoding())

	// Membership survives the conversion.
	assert.True(t, s.Contains(strObj("1")))
	assert.True(t, s.Contains(strObj("2")))
	assert.True(t, s.Contains(strObj("hello")))
	assert.Equal(t, 3, s.Size())
}

func TestSetPromotionOnThreshold(t *testing.T) {
	old := MaxIntsetEntries
	MaxIntsetEntries = 4
	defer func() { MaxIntsetEntries = old }()

	s := NewSetFor(strObj("1"))
	for i := 1; i <= 4; i++ {
		s.Add(strObj(strconv.Itoa(i)))
	}
	assert.Equal(t, EncodingIntSet, s.Encoding())

	s.Add(strObj("5"))
	assert.Equal(t, EncodingHT, s.Encoding())
	assert.Equal(t, 5, s.Size())
	for i := 1; i <= 5; i++ {
		assert.True(t, s.Contains(strObj(strconv.Itoa(i))))
	}
}

func TestSetConversionIsOneWay(t *testing.T) {
	s := NewSetFor(strObj("1"))
	s.Add(strObj("1"))
	s.ConvertToHashTable()
	assert.Equal(t, EncodingHT, s.Encoding())

	// Removing down to integers only must not narrow back.
	s.Add(strObj("2"))
	s.Remove(strObj("2"))
	assert.Equal(t, EncodingHT, s.Encoding())

	// Converting twice is a no-op.
	s.ConvertToHashTable()
	assert.Equal(t, EncodingHT, s.Encoding())
	assert.True(t, s.Contains(strObj("1")))
}

// Final membership is independent of whether the set was forced to the hash
// encoding up front.
func TestSetMembershipEncodingIndependence(t *testing.T) {
	ops := []struct {
		add bool
		val string
	}{
		{true, "10"}, {true, "20"}, {true, "30"}, {false, "20"},
		{true, "foo"}, {true, "40"}, {false, "10"}, {true, "20"},
	}

	intFirst := NewSetFor(strObj("10"))
	forced := NewSetFor(strObj("10"))
	forced.ConvertToHashTable()

	for _, op := range ops {
		if op.add {
			intFirst.Add(strObj(op.val))
			forced.Add(strObj(op.val))
		} else {
			intFirst.Remove(strObj(op.val))
			forced.Remove(strObj(op.val))
		}
	}

	require.Equal(t, forced.Size(), intFirst.Size())
	it := intFirst.Iterator()
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		assert.True(t, forced.Contains(e.Obj()), "member %s", e.String())
	}
}

func TestSetIteratorIntset(t *testing.T) {
	s := NewSetFor(strObj("3"))
	s.Add(strObj("3"))
	s.Add(strObj("1"))
	s.Add(strObj("2"))

	var got []int64
	it := s.Iterator()
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		assert.Equal(t, EncodingInt, e.Encoding)
		got = append(got, e.Int)
	}
	assert.Equal(t, []int64{1, 2, 3}, got, "intset iteration is ordered")
	assert.Equal(t, EncodingIntSet, s.Encoding(), "iteration must not promote")
}

func TestSetIteratorHashTable(t *testing.T) {
	s := NewSetFor(strObj("a"))
	want := map[string]bool{}
	for i := 0; i < 20; i++ {
		v := fmt.Sprintf("v%d", i)
		s.Add(strObj(v))
		want[v] = true
	}

	got := map[string]bool{}
	it := s.Iterator()
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		assert.Equal(t, EncodingRaw, e.Encoding)
		got[e.Str] = true
	}
	assert.Equal(t, want, got)
}

func TestSetRandom(t *testing.T) {
	s := NewSetFor(strObj("1"))
	for i := 1; i <= 30; i++ {
		s.Add(strObj(strconv.Itoa(i)))
	}
	for i := 0; i < 100; i++ {
		e := s.Random()
		assert.True(t, s.Contains(e.Obj()))
	}

	s.ConvertToHashTable()
	for i := 0; i < 100; i++ {
		e := s.Random()
		assert.True(t, s.Contains(e.Obj()))
	}
}

func TestSetElementString(t *testing.T) {
	e := SetElement{Encoding: EncodingInt, Int: -42}
	assert.Equal(t, "-42", e.String())
	assert.Equal(t, "-42", e.Obj().StringValue())

	e = SetElement{Encoding: EncodingRaw, Str: "foo"}
	assert.Equal(t, "foo", e.String())
}

func TestSetScanIntsetReturnsAll(t *testing.T) {
	s := NewSetFor(strObj("1"))
	for i := 1; i <= 5; i++ {
		s.Add(strObj(strconv.Itoa(i)))
	}

	var members []string
	next := s.Scan(0, 1, func(m string) { members = append(members, m) })
	assert.Equal(t, uint64(0), next)
	assert.Len(t, members, 5)
}

func TestSetScanHashTablePages(t *testing.T) {
	s := NewSetFor(strObj("a"))
	for i := 0; i < 50; i++ {
		s.Add(strObj(fmt.Sprintf("m%d", i)))
	}

	seen := map[string]bool{}
	cursor := uint64(0)
	pages := 0
	for {
		cursor = s.Scan(cursor, 4, func(m string) { seen[m] = true })
		pages++
		if cursor == 0 {
			break
		}
	}
	assert.Equal(t, 50, len(seen))
	assert.Greater(t, pages, 1, "a 50 member set should need several pages")
}
