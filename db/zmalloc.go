package db

import (
	"sync/atomic"
	"unsafe"
)

var usedMemory int64 = 0

// IncreaseUsedMemory increases the used memory counter
func IncreaseUsedMemory(v any) {
	updateZmallocStatAlloc(estimateMemoryUsage(v))
}

// DecreaseUsedMemory decreases the used memory counter
func DecreaseUsedMemory(v any) {
	updateZmallocStatFree(estimateMemoryUsage(v))
}

func updateZmallocStatAlloc(n int64) {
	atomic.AddInt64(&usedMemory, n)
}

func updateZmallocStatFree(n int64) {
	atomic.AddInt64(&usedMemory, -n)
}

// UsedMemory returns the current estimate of keyspace memory usage.
func UsedMemory() int64 {
	return atomic.LoadInt64(&usedMemory)
}

func estimateMemoryUsage(v any) int64 {
	switch value := v.(type) {
	case int64:
		return int64(unsafe.Sizeof(value))
	case string:
		// 16 bytes for string header on 64-bit system + actual string content
		return int64(16 + len(value))
	case *Set:
		if value.encoding == EncodingIntSet {
			return int64(24 + value.is.Len()*8)
		}
		var total int64 = 48
		it := value.Iterator()
		for e, ok := it.Next(); ok; e, ok = it.Next() {
			total += int64(16 + len(e.Str) + 8)
		}
		return total
	case *RedisObj:
		return 32 + estimateMemoryUsage(value.Value)
	default:
		return 0
	}
}
