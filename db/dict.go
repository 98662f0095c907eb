package db

import (
	"fmt"
	"math/rand"

	"github.com/spaolacci/murmur3"
)

const (
	loadFactor = 0.7
)

type Entry[K comparable, V any] struct {
	Key   K
	Value V
	Next  *Entry[K, V]
}

// HashTable is a chained hash table. It is not safe for concurrent use;
// command execution is serialized upstream.
type HashTable[K comparable, V any] struct {
	Table []*Entry[K, V]
	Size  int
	Count int
}

func NewHashTable[K comparable, V any](initSize int) *HashTable[K, V] {
	if initSize < 1 {
		initSize = 1
	}
	return &HashTable[K, V]{
		Table: make([]*Entry[K, V], initSize),
		Size:  initSize,
	}
}

func (h *HashTable[K, V]) Hash(key K) int {
	keyString := fmt.Sprintf("%v", key)
	return int(murmur3.Sum32([]byte(keyString)) % uint32(h.Size))
}

// Set inserts or updates key. Returns true when a new key was inserted.
func (h *HashTable[K, V]) Set(key K, value V) bool {
	if float64(h.Count)/float64(h.Size) > loadFactor {
		h.resize()
	}

	index := h.Hash(key)
	for curr := h.Table[index]; curr != nil; curr = curr.Next {
		if curr.Key == key {
			curr.Value = value
			return false
		}
	}
	h.Table[index] = &Entry[K, V]{Key: key, Value: value, Next: h.Table[index]}
	h.Count++
	return true
}

func (h *HashTable[K, V]) resize() {
	newSize := h.Size * 2
	newTable := make([]*Entry[K, V], newSize)
	oldTable := h.Table
	h.Table = newTable
	h.Size = newSize
	h.Count = 0 // Reset count because we'll be re-adding the elements

	for _, entry := range oldTable {
		for entry != nil {
			h.Set(entry.Key, entry.Value)
			entry = entry.Next
		}
	}
}

// Delete removes key, reporting whether it was present.
func (h *HashTable[K, V]) Delete(key K) bool {
	index := h.Hash(key)
	var prev *Entry[K, V]
	for curr := h.Table[index]; curr != nil; curr = curr.Next {
		if curr.Key == key {
			if prev == nil {
				h.Table[index] = curr.Next
			} else {
				prev.Next = curr.Next
			}
			h.Count--
			return true
		}
		prev = curr
	}
	return false
}

func (h *HashTable[K, V]) Get(key K) (V, bool) {
	for curr := h.Table[h.Hash(key)]; curr != nil; curr = curr.Next {
		if curr.Key == key {
			return curr.Value, true
		}
	}
	var zero V
	return zero, false
}

// Len returns the number of elements in the hash table.
func (h *HashTable[K, V]) Len() int {
	return h.Count
}

// Empty returns true if the hash table is empty.
func (h *HashTable[K, V]) Empty() bool {
	return h.Count == 0
}

// GetRandomKey returns a uniformly-chosen-enough key, the way a chained table
// can: a random non-empty bucket, then a random entry of its chain.
func (h *HashTable[K, V]) GetRandomKey() (K, bool) {
	var zero K
	if h.Empty() {
		return zero, false
	}
	var head *Entry[K, V]
	for head == nil {
		head = h.Table[rand.Intn(h.Size)]
	}
	chainLen := 0
	for curr := head; curr != nil; curr = curr.Next {
		chainLen++
	}
	curr := head
	for n := rand.Intn(chainLen); n > 0; n-- {
		curr = curr.Next
	}
	return curr.Key, true
}

// Iterator walks all entries. The order is unspecified but stable as long as
// the table is not mutated; mutating while iterating is undefined.
type DictIterator[K comparable, V any] struct {
	h      *HashTable[K, V]
	bucket int
	entry  *Entry[K, V]
}

func (h *HashTable[K, V]) Iterator() *DictIterator[K, V] {
	return &DictIterator[K, V]{h: h}
}

func (it *DictIterator[K, V]) Next() (*Entry[K, V], bool) {
	for it.entry == nil {
		if it.bucket >= it.h.Size {
			return nil, false
		}
		it.entry = it.h.Table[it.bucket]
		it.bucket++
	}
	e := it.entry
	it.entry = e.Next
	return e, true
}

// Scan visits the chain of bucket `cursor` and returns the next cursor,
// 0 once the table has been fully walked. The guarantees are those of a
// cursor scan: elements present for the whole scan are visited at least once.
func (h *HashTable[K, V]) Scan(cursor uint64, visit func(key K, value V)) uint64 {
	if cursor >= uint64(h.Size) {
		return 0
	}
	for curr := h.Table[cursor]; curr != nil; curr = curr.Next {
		visit(curr.Key, curr.Value)
	}
	cursor++
	if cursor >= uint64(h.Size) {
		return 0
	}
	return cursor
}
