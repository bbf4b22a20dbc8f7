// Package lever implements the Lever eviction policy: a FIFO order with a
// two-pointer (fast/slow) sweep from the tail toward the head. An accessed
// object the fast pointer passes over is cleared and moved to just after
// the slow pointer, giving it one more chance to survive. The object the
// slow pointer lands on is evicted at once if it is unaccessed (quick
// demotion); if it is accessed, it is cleared and kept, and the current
// tail is evicted instead (FIFO demotion).
package lever

import (
	"fmt"

	"github.com/hey-kong/lever/cache"
	"github.com/hey-kong/lever/index"
	"github.com/hey-kong/lever/internal/intrusive"
)

// node is a resident object's slot in the eviction queue. freq is a single
// bit: 1 if the object has been accessed since it entered the queue, 0
// otherwise (inserted objects, and objects that survive a sweep, start/
// reset at 0).
type node struct {
	cache.ObjectBase
	links intrusive.Links[node]
	freq  uint8
}

func (n *node) Links() *intrusive.Links[node] { return &n.links }

// Cache implements the Lever policy.
type Cache struct {
	common cache.CommonParams
	idx    index.Index[*node]
	list   intrusive.List[node, *node]
	cache.Counters

	// fast and slow are markers into list, walking from tail toward head
	// two steps and one step per eviction respectively. Both start nil and
	// are seeded to list.Tail() on the first eviction.
	fast *node
	slow *node
}

var _ cache.Engine = (*Cache)(nil)

// New constructs a Lever engine.
func New(common cache.CommonParams) *Cache {
	return &Cache{common: common, idx: index.New[*node]()}
}

func init() {
	cache.Register("Lever", func(c cache.CommonParams) cache.Engine { return New(c) })
}

// Name returns "Lever".
func (c *Cache) Name() string { return "Lever" }

// Get implements cache.Engine.
func (c *Cache) Get(req *cache.Request) bool {
	return cache.GetBase(c, req, c.common.CapacityByte, c.common.ObjMDSize(), c.common.Metrics)
}

// Find implements cache.Engine: a hit with updateCache set marks the object
// as accessed, giving it one extra chance to survive the next sweep.
func (c *Cache) Find(req *cache.Request, updateCache bool) (cache.Object, bool) {
	n, ok := c.idx.Find(req.ObjID)
	if !ok {
		return nil, false
	}
	if updateCache {
		n.freq = 1
	}
	return n, true
}

// Insert implements cache.Engine: new objects enter at the head, unvisited.
func (c *Cache) Insert(req *cache.Request) cache.Object {
	n := &node{ObjectBase: cache.ObjectBase{ObjID: req.ObjID, ObjSize: req.ObjSize}}
	c.list.PrependToHead(n)
	n.freq = 0
	cache.InsertBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), n)
	return n
}

// ToEvict implements cache.Engine: it peeks what Evict would currently
// choose, without advancing fast/slow or mutating any freq bit. If slow sits
// on an unvisited object, that object is next; otherwise the tail is, since
// an unvisited tail is always evicted on the FIFO-demotion path before slow
// would ever reach it.
func (c *Cache) ToEvict(req *cache.Request) (cache.Object, bool) {
	if c.slow != nil && c.slow.freq == 0 {
		return c.slow, true
	}
	if t := c.list.Tail(); t != nil {
		return t, true
	}
	return nil, false
}

// Evict implements cache.Engine: advances a 2-step fast sweep and a 1-step
// slow sweep per call. Any object the fast sweep passes over with freq==1
// is cleared and promoted to just after slow (giving it another full lap
// before the slow sweep can reach it again). The object slow then lands on
// is either cleared and left in place (if freq==1: FIFO demotion evicts the
// real tail instead) or removed outright (if freq==0: quick demotion).
func (c *Cache) Evict(req *cache.Request) {
	if c.slow == nil {
		c.slow = c.list.Tail()
	}
	if c.fast == nil {
		c.fast = c.list.Tail()
	}
	if c.slow == nil {
		cache.Fatalf(c.common.EffectiveLogger(), "lever: Evict called on an empty cache")
		return
	}

	for i := 0; i < 2; i++ {
		obj := c.fast
		c.fast = obj.Links().Prev()
		if obj.freq == 1 {
			obj.freq = 0
			c.list.MoveAfterMark(c.slow, obj)
		}
		if c.fast == nil {
			break
		}
	}

	obj := c.slow
	c.slow = obj.Links().Prev()
	if obj.freq == 1 {
		obj.freq = 0
		// FIFO demotion: the real tail is evicted, not obj. A marker
		// sitting on the tail is advanced off it first.
		victim := c.list.Tail()
		if c.slow == victim {
			c.slow = victim.Links().Prev()
		}
		if c.fast == victim {
			c.fast = victim.Links().Prev()
		}
		c.list.Remove(victim)
		cache.EvictBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), c.common.Metrics, cache.EvictPolicy, victim)
	} else {
		// Quick demotion: obj itself is evicted. slow has already moved
		// off it; fast is advanced off it if it sits there.
		if c.fast == obj {
			c.fast = obj.Links().Prev()
		}
		c.list.Remove(obj)
		cache.EvictBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), c.common.Metrics, cache.EvictPolicy, obj)
	}
}

// Remove implements cache.Engine. A marker sitting on the removed node is
// advanced the same way the sweep would advance it, so a later Evict never
// dereferences a dangling marker.
func (c *Cache) Remove(objID uint64) bool {
	n, ok := c.idx.Find(objID)
	if !ok {
		return false
	}
	if n == c.slow {
		c.slow = n.Links().Prev()
	}
	if n == c.fast {
		c.fast = n.Links().Prev()
	}
	c.list.Remove(n)
	cache.EvictBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), c.common.Metrics, cache.EvictUserRemove, n)
	return true
}

// Verify implements cache.Engine.
func (c *Cache) Verify() error {
	n := 0
	var size int64
	for node := c.list.Head(); node != nil; node = node.Links().Next() {
		got, ok := c.idx.Find(node.ID())
		if !ok || got != node {
			return fmt.Errorf("lever: node %d in list but not indexed to itself", node.ID())
		}
		n++
		size += int64(node.Size()) + c.common.ObjMDSize()
	}
	if n != c.idx.Len() {
		return fmt.Errorf("lever: list has %d nodes, index has %d", n, c.idx.Len())
	}
	if int64(n) != c.NObj() {
		return fmt.Errorf("lever: list has %d nodes, counters say %d", n, c.NObj())
	}
	if size != c.OccupiedByte() {
		return fmt.Errorf("lever: list bytes %d, counters say %d", size, c.OccupiedByte())
	}
	return nil
}

// Close implements cache.Engine.
func (c *Cache) Close() error { return nil }
