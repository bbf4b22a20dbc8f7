// Package shift implements the Shift eviction policy: two nested FIFO
// sub-caches, an eviction queue and a retention queue. Objects that survive
// a pass through the eviction queue (because they were accessed — freq>=1)
// are "shuttled" into the retention queue instead of being freed; only an
// unaccessed object (freq==0) is actually evicted. Once the eviction queue
// drains completely the two queues swap roles (the old retention queue
// becomes the new eviction queue), so survivors eventually cycle back
// through eviction again.
package shift

import (
	"fmt"

	"github.com/hey-kong/lever/cache"
	"github.com/hey-kong/lever/policy/fifo"
)

// Cache implements the Shift policy.
type Cache struct {
	common cache.CommonParams

	eviction  *fifo.Cache
	retention *fifo.Cache
	shift     bool

	// reqLocal is a reusable scratch request, avoiding an allocation each
	// time Evict needs to copy a victim's identity into a promotion insert.
	reqLocal cache.Request
}

var _ cache.Engine = (*Cache)(nil)

// New constructs a Shift engine. The two sub-caches never enforce their own
// capacity (Shift enforces the combined budget via cache.GetBase) and never
// report their own metrics — only Shift's own Get/Evict report Hit/Miss/
// Evict/Size, so an internal shuttle between queues never appears as a
// spurious hit, miss, or eviction to a caller's metrics sink.
func New(common cache.CommonParams) *Cache {
	subCommon := common
	subCommon.Metrics = nil
	return &Cache{
		common:    common,
		eviction:  fifo.New(subCommon),
		retention: fifo.New(subCommon),
	}
}

func init() {
	cache.Register("Shift", func(c cache.CommonParams) cache.Engine { return New(c) })
}

// Name returns "Shift".
func (c *Cache) Name() string { return "Shift" }

// Get implements cache.Engine.
func (c *Cache) Get(req *cache.Request) bool {
	return cache.GetBase(c, req, c.common.CapacityByte, c.common.ObjMDSize(), c.common.Metrics)
}

// Find implements cache.Engine. When updateCache is false, only a presence
// check is made (retention first, then eviction — the order the source
// checks in when it isn't promoting). When updateCache is true, eviction is
// checked first: a hit there that has never been accessed (freq==0) is
// moved to the head of its own queue before its freq is incremented; a hit
// in retention is treated the same way.
func (c *Cache) Find(req *cache.Request, updateCache bool) (cache.Object, bool) {
	if !updateCache {
		if n := c.retention.NodeFor(req.ObjID); n != nil {
			return n, true
		}
		if n := c.eviction.NodeFor(req.ObjID); n != nil {
			return n, true
		}
		return nil, false
	}

	if n := c.eviction.NodeFor(req.ObjID); n != nil {
		if n.Freq() == 0 {
			c.eviction.List().MoveToHead(n)
		}
		n.SetFreq(n.Freq() + 1)
		return n, true
	}

	if n := c.retention.NodeFor(req.ObjID); n != nil {
		if n.Freq() == 0 {
			c.retention.List().MoveToHead(n)
		}
		n.SetFreq(n.Freq() + 1)
		return n, true
	}

	return nil, false
}

// Insert implements cache.Engine: a new object enters the eviction queue,
// unless the shift flag is set, in which case it enters retention directly.
// Evict sets the flag once the eviction queue holds a tenth or less of all
// resident objects; a role swap clears it.
func (c *Cache) Insert(req *cache.Request) cache.Object {
	if c.shift {
		return c.retention.Insert(req)
	}
	return c.eviction.Insert(req)
}

// ToEvict implements cache.Engine. Shift cannot report a victim without
// mutating state (an unaccessed victim is a true eviction, but an accessed
// one triggers a promotion and possibly a queue role swap), so — as in the
// policy this is ported from — it is simply unsupported.
func (c *Cache) ToEvict(req *cache.Request) (cache.Object, bool) {
	cache.Fatalf(c.common.EffectiveLogger(), "shift: ToEvict is not supported by this policy")
	return nil, false
}

// Evict implements cache.Engine. It pops objects from the tail of the
// eviction queue: an accessed object (freq>=1) is shuttled into retention
// with its freq halved and the pass continues; an unaccessed object
// (freq==0) is the true victim and ends the pass. If the eviction queue
// drains completely before a true victim is found, the two queues swap
// roles and the pass ends regardless (the newly-promoted eviction queue is
// only drained on a later call). Once the eviction queue's share drops to a
// tenth of the total, the next Insert routes new objects straight into
// retention.
func (c *Cache) Evict(req *cache.Request) {
	evicting := c.eviction
	hasEvicted := false

	for !hasEvicted && evicting.NObj() > 0 {
		victimObj, ok := evicting.ToEvict(req)
		if !ok {
			cache.Fatalf(c.common.EffectiveLogger(), "shift: eviction queue reports nObj>0 but has no tail")
			return
		}
		victim := victimObj.(*fifo.Node)
		cache.CopyFromObject(&c.reqLocal, victim)

		if victim.Freq() >= 1 {
			promoted := c.retention.Insert(&c.reqLocal).(*fifo.Node)
			promoted.SetFreq(victim.Freq() / 2)
		} else {
			hasEvicted = true
		}

		if !evicting.Remove(victim.ID()) {
			cache.Fatalf(c.common.EffectiveLogger(), "shift: cannot remove obj %d", victim.ID())
			return
		}

		if evicting.NObj() <= 0 {
			c.eviction, c.retention = c.retention, evicting
			c.shift = false
		}
	}

	if hasEvicted && c.common.Metrics != nil {
		c.common.Metrics.Evict(cache.EvictPolicy)
		c.common.Metrics.Size(c.NObj(), c.OccupiedByte())
	}

	if c.eviction.NObj() <= c.NObj()/10 {
		c.shift = true
	}
}

// Remove implements cache.Engine.
func (c *Cache) Remove(objID uint64) bool {
	if c.eviction.Remove(objID) {
		return true
	}
	return c.retention.Remove(objID)
}

// NObj implements cache.Engine: the sum of both queues.
func (c *Cache) NObj() int64 { return c.eviction.NObj() + c.retention.NObj() }

// OccupiedByte implements cache.Engine: the sum of both queues.
func (c *Cache) OccupiedByte() int64 { return c.eviction.OccupiedByte() + c.retention.OccupiedByte() }

// Verify implements cache.Engine.
func (c *Cache) Verify() error {
	if err := c.eviction.Verify(); err != nil {
		return fmt.Errorf("shift: eviction queue: %w", err)
	}
	if err := c.retention.Verify(); err != nil {
		return fmt.Errorf("shift: retention queue: %w", err)
	}
	return nil
}

// Close implements cache.Engine.
func (c *Cache) Close() error {
	if err := c.eviction.Close(); err != nil {
		return err
	}
	return c.retention.Close()
}
