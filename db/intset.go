package db

import "math/rand"

// IntSet is a sorted, deduplicated array of signed 64-bit integers.
// Membership is O(log n) via binary search, insertion and deletion are O(n)
// preserving order, index fetch and random selection are O(1).
type IntSet struct {
	contents []int64
}

func NewIntSet() *IntSet {
	return &IntSet{}
}

// Len returns the number of stored integers.
func (is *IntSet) Len() int {
	return len(is.contents)
}

// search returns the position of value, or the position where it would be
// inserted, and whether it was found.
func (is *IntSet) search(value int64) (int, bool) {
	lo, hi := 0, len(is.contents)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		cur := is.contents[mid]
		if cur == value {
			return mid, true
		}
		if cur < value {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return lo, false
}

// Add inserts value keeping ascending order. Returns false if already present.
func (is *IntSet) Add(value int64) bool {
	pos, found := is.search(value)
	if found {
		return false
	}
	is.contents = append(is.contents, 0)
	copy(is.contents[pos+1:], is.contents[pos:])
	is.contents[pos] = value
	return true
}

// Remove deletes value. Returns false if not present.
func (is *IntSet) Remove(value int64) bool {
	pos, found := is.search(value)
	if !found {
		return false
	}
	is.contents = append(is.contents[:pos], is.contents[pos+1:]...)
	return true
}

// Find reports membership.
func (is *IntSet) Find(value int64) bool {
	_, found := is.search(value)
	return found
}

// Get fetches the integer at index i in ascending order.
func (is *IntSet) Get(i int) (int64, bool) {
	if i < 0 || i >= len(is.contents) {
		return 0, false
	}
	return is.contents[i], true
}

// Random returns a uniformly random member of a non-empty intset.
func (is *IntSet) Random() int64 {
	return is.contents[rand.Intn(len(is.contents))]
}
