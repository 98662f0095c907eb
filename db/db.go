package db

const (
	INITIAL_DB_SIZE = 16
)

// RedisDb represents one logical database: the keyspace plus the expire
// bookkeeping. Values are never empty collections; the command layer deletes
// a key the moment its value becomes empty.
type RedisDb struct {
	dict   *HashTable[string, *RedisObj] // the keyspace for this DB
	expire *HashTable[string, uint64]    // timeout of keys with a timeout set
	id     uint64                        // database ID
	avgTTL uint64                        // average TTL, just for stats
}

func New(id uint64) *RedisDb {
	return &RedisDb{
		id:     id,
		dict:   NewHashTable[string, *RedisObj](INITIAL_DB_SIZE),
		expire: NewHashTable[string, uint64](INITIAL_DB_SIZE),
	}
}

func (db *RedisDb) ID() uint64 {
	return db.id
}

// LookupKeyRead returns the value of key for a read-only access.
func (db *RedisDb) LookupKeyRead(key string) (*RedisObj, bool) {
	return db.dict.Get(key)
}

// LookupKeyWrite returns the value of key for an access that may mutate it.
func (db *RedisDb) LookupKeyWrite(key string) (*RedisObj, bool) {
	return db.dict.Get(key)
}

// Add inserts a fresh key. The caller guarantees the key is absent.
func (db *RedisDb) Add(key string, val *RedisObj) {
	db.dict.Set(key, val)
	IncreaseUsedMemory(val)
}

// Overwrite replaces the value of an existing key in place.
func (db *RedisDb) Overwrite(key string, val *RedisObj) {
	if old, ok := db.dict.Get(key); ok {
		DecreaseUsedMemory(old)
	}
	db.dict.Set(key, val)
	IncreaseUsedMemory(val)
}

// Delete removes key and its expire, reporting whether it existed.
func (db *RedisDb) Delete(key string) bool {
	if old, ok := db.dict.Get(key); ok {
		DecreaseUsedMemory(old)
	}
	if !db.dict.Delete(key) {
		return false
	}
	db.expire.Delete(key)
	return true
}

// Len returns the number of keys.
func (db *RedisDb) Len() int {
	return db.dict.Len()
}

// GetExpire returns the expire time of the key, -1 when none is set.
func (db *RedisDb) GetExpire(key string) int64 {
	if db.expire.Empty() {
		return -1
	}
	when, exist := db.expire.Get(key)
	if !exist {
		return -1
	}
	return int64(when)
}

// SetExpire sets the expire time of an existing key.
func (db *RedisDb) SetExpire(key string, expire uint64) {
	if _, exist := db.dict.Get(key); !exist {
		return
	}
	db.expire.Set(key, expire)
}

// RmExpire removes the expire time of the key.
func (db *RedisDb) RmExpire(key string) {
	if _, exist := db.dict.Get(key); !exist {
		return
	}
	db.expire.Delete(key)
}
