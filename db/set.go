package db

import "strconv"

// MaxIntsetEntries is the number of entries above which an intset-encoded set
// is converted to a hash table on insert (set-max-intset-entries).
var MaxIntsetEntries = 512

type sentinel struct{}

// Set is the set value type. It holds one of two representations: a packed
// sorted intset while every member is integer representable and the set is
// small, or a generic hash table of byte strings. Conversion is one way,
// intset to hash table, and is triggered from Add only.
type Set struct {
	encoding EncodingType
	is       *IntSet
	ht       *HashTable[string, sentinel]
}

// NewIntsetSet returns an empty set biased to the intset encoding. Multi-key
// results start this way so that integer-only outputs stay packed.
func NewIntsetSet() *Set {
	return &Set{encoding: EncodingIntSet, is: NewIntSet()}
}

// NewHashSet returns an empty hash-table encoded set presized for n members.
func NewHashSet(n int) *Set {
	if n < 4 {
		n = 4
	}
	return &Set{encoding: EncodingHT, ht: NewHashTable[string, sentinel](n * 2)}
}

// NewSetFor picks the initial encoding for a set that must hold value:
// an intset when the value is integer representable, a hash table otherwise.
func NewSetFor(value *RedisObj) *Set {
	if _, ok := objAsInt64(value); ok {
		return NewIntsetSet()
	}
	return NewHashSet(4)
}

// Encoding reports the live encoding of the set.
func (s *Set) Encoding() EncodingType {
	return s.encoding
}

// Size returns the cardinality.
func (s *Set) Size() int {
	if s.encoding == EncodingIntSet {
		return s.is.Len()
	}
	return s.ht.Len()
}

// Add inserts value, reporting whether it was newly added. An intset-encoded
// set converts to a hash table when the value is not integer representable,
// or when the insert pushes the length past MaxIntsetEntries.
func (s *Set) Add(value *RedisObj) bool {
	switch s.encoding {
	case EncodingHT:
		return s.ht.Set(value.StringValue(), sentinel{})
	case EncodingIntSet:
		if v, ok := objAsInt64(value); ok {
			if !s.is.Add(v) {
				return false
			}
			if s.is.Len() > MaxIntsetEntries {
				s.ConvertToHashTable()
			}
			return true
		}
		// Not integer representable: convert, then the insert must succeed
		// since the intset cannot contain a non-integer member.
		s.ConvertToHashTable()
		return s.ht.Set(value.StringValue(), sentinel{})
	default:
		panic("unknown set encoding")
	}
}

// Remove deletes value, reporting whether it was present.
func (s *Set) Remove(value *RedisObj) bool {
	switch s.encoding {
	case EncodingHT:
		return s.ht.Delete(value.StringValue())
	case EncodingIntSet:
		if v, ok := objAsInt64(value); ok {
			return s.is.Remove(v)
		}
		return false
	default:
		panic("unknown set encoding")
	}
}

// Contains reports membership of value.
func (s *Set) Contains(value *RedisObj) bool {
	switch s.encoding {
	case EncodingHT:
		_, ok := s.ht.Get(value.StringValue())
		return ok
	case EncodingIntSet:
		if v, ok := objAsInt64(value); ok {
			return s.is.Find(v)
		}
		return false
	default:
		panic("unknown set encoding")
	}
}

// IntsetFind is the integer fast path: membership by binary search when the
// set is intset encoded. Callers must check the encoding first.
func (s *Set) IntsetFind(v int64) bool {
	return s.is.Find(v)
}

// ConvertToHashTable switches the representation to a hash table presized for
// the current members, enumerating intset integers as canonical decimal
// strings. Conversion is one way.
func (s *Set) ConvertToHashTable() {
	if s.encoding != EncodingIntSet {
		return
	}
	d := NewHashTable[string, sentinel](s.is.Len()*2 + 4)
	for i := 0; i < s.is.Len(); i++ {
		v, _ := s.is.Get(i)
		d.Set(strconv.FormatInt(v, 10), sentinel{})
	}
	s.encoding = EncodingHT
	s.ht = d
	s.is = nil
}

// SetElement is one member as yielded by iteration or random selection. The
// Encoding tag says which payload field carries it: EncodingInt for Int,
// EncodingRaw for Str.
type SetElement struct {
	Encoding EncodingType
	Int      int64
	Str      string
}

// String returns the canonical byte-string form of the element.
func (e SetElement) String() string {
	if e.Encoding == EncodingInt {
		return strconv.FormatInt(e.Int, 10)
	}
	return e.Str
}

// Obj materializes the element as a standalone object, integer encoded when
// the element is an integer. Destructive callers use this before mutating.
func (e SetElement) Obj() *RedisObj {
	if e.Encoding == EncodingInt {
		return NewRedisObj(StringType, EncodingInt, e.Int, 0)
	}
	return NewStringObj(e.Str)
}

// Random returns a random element of a non-empty set without copying the
// payload. An intset draw is uniform; a hash-table draw picks a random
// non-empty bucket, then a random entry of its chain, so it is not exactly
// uniform.
func (s *Set) Random() SetElement {
	if s.encoding == EncodingIntSet {
		return SetElement{Encoding: EncodingInt, Int: s.is.Random()}
	}
	key, _ := s.ht.GetRandomKey()
	return SetElement{Encoding: EncodingRaw, Str: key}
}

// SetIterator yields each member once, lazily. It never converts the set, and
// stays valid across the set's own read-only operations. Mutating the set
// mid-iteration is undefined; gather first, then act.
type SetIterator struct {
	encoding EncodingType
	is       *IntSet
	ii       int
	di       *DictIterator[string, sentinel]
}

func (s *Set) Iterator() *SetIterator {
	si := &SetIterator{encoding: s.encoding}
	if s.encoding == EncodingIntSet {
		si.is = s.is
	} else {
		si.di = s.ht.Iterator()
	}
	return si
}

func (si *SetIterator) Next() (SetElement, bool) {
	if si.encoding == EncodingIntSet {
		v, ok := si.is.Get(si.ii)
		if !ok {
			return SetElement{}, false
		}
		si.ii++
		return SetElement{Encoding: EncodingInt, Int: v}, true
	}
	e, ok := si.di.Next()
	if !ok {
		return SetElement{}, false
	}
	return SetElement{Encoding: EncodingRaw, Str: e.Key}, true
}

// Scan visits members a page at a time for cursor iteration. An intset
// encoded set is small by construction, so the whole set is served in one
// page with a zero next-cursor. A hash-encoded set walks up to count buckets
// starting at cursor and returns the next cursor, zero once done.
func (s *Set) Scan(cursor uint64, count int, visit func(member string)) uint64 {
	if s.encoding == EncodingIntSet {
		for i := 0; i < s.is.Len(); i++ {
			v, _ := s.is.Get(i)
			visit(strconv.FormatInt(v, 10))
		}
		return 0
	}
	for i := 0; i < count; i++ {
		cursor = s.ht.Scan(cursor, func(k string, _ sentinel) {
			visit(k)
		})
		if cursor == 0 {
			break
		}
	}
	return cursor
}

// objAsInt64 extracts the integer form of a string object: either the value
// is already integer encoded, or its raw string parses strictly.
func objAsInt64(o *RedisObj) (int64, bool) {
	if v, ok := o.IntValue(); ok {
		return v, true
	}
	if o.Encoding == EncodingRaw {
		return ParseStrictInt64(o.Value.(string))
	}
	return 0, false
}
