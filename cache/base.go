package cache

import "github.com/hey-kong/lever/index"

// Counters tracks the n_obj/occupied_byte bookkeeping every engine's
// insert/evict hooks share. Engines embed one (Shift sums over its two
// sub-engines' counters instead, since it owns no objects directly).
type Counters struct {
	nObj         int64
	occupiedByte int64
}

// NObj returns the resident object count.
func (c *Counters) NObj() int64 { return c.nObj }

// OccupiedByte returns the resident byte total.
func (c *Counters) OccupiedByte() int64 { return c.occupiedByte }

func (c *Counters) onInsert(size uint32, mdSize int64) {
	c.nObj++
	c.occupiedByte += int64(size) + mdSize
}

func (c *Counters) onEvict(size uint32, mdSize int64) {
	c.nObj--
	c.occupiedByte -= int64(size) + mdSize
}

// GetBase implements the get/find/evict/insert sequence every engine's Get
// delegates to (§4.2, §4.6 cache_get_base): a hit promotes and returns
// true; a miss evicts until there is room for req, inserts, and returns
// false.
func GetBase(e Engine, req *Request, capacityByte, mdSize int64, metrics Metrics) bool {
	if _, hit := e.Find(req, true); hit {
		if metrics != nil {
			metrics.Hit()
		}
		return true
	}
	if metrics != nil {
		metrics.Miss()
	}
	for e.OccupiedByte()+int64(req.ObjSize)+mdSize > capacityByte {
		e.Evict(req)
	}
	e.Insert(req)
	return false
}

// InsertBase implements cache_insert_base: it records n in the hash index
// and updates the resident counters. Callers place n into their own list
// structure separately (policies differ on where a new object goes).
func InsertBase[N Object](idx index.Index[N], counters *Counters, mdSize int64, n N) {
	idx.Insert(n.ID(), n)
	counters.onInsert(n.Size(), mdSize)
}

// EvictBase implements cache_evict_base / cache_remove_obj_base: it removes
// n from the hash index, updates counters, and reports the eviction to
// metrics. Callers must have already unlinked n from their list structure.
// reason distinguishes a policy-driven eviction from a user-initiated
// Remove; both paths share this one function, as in the source.
func EvictBase[N Object](idx index.Index[N], counters *Counters, mdSize int64, metrics Metrics, reason EvictReason, n N) {
	idx.Remove(n.ID())
	counters.onEvict(n.Size(), mdSize)
	if metrics != nil {
		metrics.Evict(reason)
		metrics.Size(counters.nObj, counters.occupiedByte)
	}
}
