package db

import "strconv"

type ObjectType uint8

const (
	StringType ObjectType = iota
	ListType
	SetType
	ZSetType
	HashType
)

type EncodingType int

const (
	EncodingRaw    EncodingType = iota // Raw string encoding
	EncodingInt                        // Encoded as integer
	EncodingHT                         // Encoded as hash table
	EncodingIntSet                     // Encoded as intset
)

// RedisObj is the basic object type stored in the keyspace. Value holds a
// string for EncodingRaw, an int64 for EncodingInt and a *Set for set objects.
type RedisObj struct {
	Type     ObjectType
	Encoding EncodingType
	LRU      int64
	Value    any
}

func NewRedisObj(t ObjectType, enc EncodingType, value any, lru int64) *RedisObj {
	return &RedisObj{Type: t, Encoding: enc, Value: value, LRU: lru}
}

// NewStringObj creates a raw string object.
func NewStringObj(s string) *RedisObj {
	return NewRedisObj(StringType, EncodingRaw, s, 0)
}

// NewSetObj wraps a set value; the object encoding is copied from the set
// encoding at creation and is not updated when the set is later converted.
func NewSetObj(s *Set) *RedisObj {
	return NewRedisObj(SetType, s.Encoding(), s, 0)
}

func (ro *RedisObj) GetObjType() ObjectType {
	return ro.Type
}

// Set returns the set value of a SetType object.
func (ro *RedisObj) Set() *Set {
	return ro.Value.(*Set)
}

// StringValue returns the byte-string form of a string-typed object,
// formatting integer-encoded values as canonical decimal.
func (ro *RedisObj) StringValue() string {
	if ro.Encoding == EncodingInt {
		return strconv.FormatInt(ro.Value.(int64), 10)
	}
	return ro.Value.(string)
}

// IntValue reports the integer payload of an integer-encoded object.
func (ro *RedisObj) IntValue() (int64, bool) {
	if ro.Encoding == EncodingInt {
		return ro.Value.(int64), true
	}
	return 0, false
}

// TryObjectEncoding tags a raw string object with the integer encoding when
// its value is strictly integer representable. Downstream set operations use
// the tag to hit the intset fast paths.
func TryObjectEncoding(o *RedisObj) *RedisObj {
	if o.Type != StringType || o.Encoding != EncodingRaw {
		return o
	}
	if v, ok := ParseStrictInt64(o.Value.(string)); ok {
		o.Encoding = EncodingInt
		o.Value = v
	}
	return o
}

// ParseStrictInt64 parses s as a signed 64-bit integer in canonical decimal
// form. Values that do not round-trip (leading zeros, a leading '+',
// whitespace) are not integer representable and stay in string form.
func ParseStrictInt64(s string) (int64, bool) {
	if len(s) == 0 || len(s) > 20 {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(v, 10) != s {
		return 0, false
	}
	return v, true
}
