// Package shiftsieve implements the ShiftSieve eviction policy: a SIEVE-like
// single hand ("pointer") that sweeps from the tail toward the head,
// clearing each visited object's VISITED bit and marking SURVIVED the first
// time it does so, selecting the first object it finds that was not visited
// since the hand last passed it. The hand restarts from the tail whenever
// it has swept far enough that the remaining unswept region is small
// relative to how many objects have already proven themselves "hot"
// (survived at least one sweep).
package shiftsieve

import (
	"fmt"

	"github.com/hey-kong/lever/cache"
	"github.com/hey-kong/lever/index"
	"github.com/hey-kong/lever/internal/intrusive"
)

const (
	visitedMask  uint8 = 1 << 0
	survivedMask uint8 = 1 << 1
)

// node is a resident object's slot in the eviction queue.
type node struct {
	cache.ObjectBase
	links  intrusive.Links[node]
	status uint8
}

func (n *node) Links() *intrusive.Links[node] { return &n.links }

// Cache implements the ShiftSieve policy.
type Cache struct {
	common cache.CommonParams
	idx    index.Index[*node]
	list   intrusive.List[node, *node]
	cache.Counters

	// pointer is the sweeping hand, walking from tail toward head one
	// selectVictim call at a time. nil means the next call restarts from
	// the tail (the first eviction, or the hand having swept a full lap).
	pointer *node
	right   int64
	hot     int64
}

var _ cache.Engine = (*Cache)(nil)

// New constructs a ShiftSieve engine.
func New(common cache.CommonParams) *Cache {
	return &Cache{common: common, idx: index.New[*node]()}
}

func init() {
	cache.Register("ShiftSieve", func(c cache.CommonParams) cache.Engine { return New(c) })
}

// Name returns "ShiftSieve".
func (c *Cache) Name() string { return "ShiftSieve" }

// Get implements cache.Engine.
func (c *Cache) Get(req *cache.Request) bool {
	return cache.GetBase(c, req, c.common.CapacityByte, c.common.ObjMDSize(), c.common.Metrics)
}

// Find implements cache.Engine. An object whose SURVIVED bit is unset is
// moved to the head on every hit (the bit is never cleared once set, so a
// survivor stays in place); every hit, moved or not, sets VISITED so a later
// sweep gives it one more chance.
func (c *Cache) Find(req *cache.Request, updateCache bool) (cache.Object, bool) {
	n, ok := c.idx.Find(req.ObjID)
	if !ok {
		return nil, false
	}
	if updateCache {
		if n.status&survivedMask == 0 {
			if n == c.pointer {
				c.pointer = n.Links().Prev()
			}
			c.list.MoveToHead(n)
		}
		n.status |= visitedMask
	}
	return n, true
}

// Insert implements cache.Engine: new objects enter at the head, with a
// clear status (neither visited nor survived).
func (c *Cache) Insert(req *cache.Request) cache.Object {
	n := &node{ObjectBase: cache.ObjectBase{ObjID: req.ObjID, ObjSize: req.ObjSize}}
	c.list.PrependToHead(n)
	n.status = 0
	cache.InsertBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), n)
	return n
}

// selectVictim advances the sweeping hand, clearing VISITED and setting
// SURVIVED the first time an object is passed, until it lands on an object
// that was not visited since the hand last passed it. It restarts from the
// tail whenever the number of objects left unswept is no more than half the
// number already marked hot. This has the same side effects (pointer/right/hot mutation,
// status-bit clearing) whether it is called from ToEvict or Evict — neither
// is a non-mutating peek, matching the policy this is ported from.
func (c *Cache) selectVictim() *node {
	obj := c.pointer
	if obj == nil {
		obj = c.list.Tail()
		c.right = 0
		c.hot = 0
	}

	for obj.status&visitedMask != 0 {
		obj.status &^= visitedMask
		if obj.status&survivedMask == 0 {
			obj.status |= survivedMask
			c.hot++
		}
		obj = obj.Links().Prev()
		c.right++
		if c.NObj()-c.right <= c.hot/2 {
			obj = c.list.Tail()
			c.right = 0
			c.hot = 0
		}
	}

	c.pointer = obj.Links().Prev()
	return obj
}

// ToEvict implements cache.Engine.
func (c *Cache) ToEvict(req *cache.Request) (cache.Object, bool) {
	if c.list.Tail() == nil && c.pointer == nil {
		return nil, false
	}
	return c.selectVictim(), true
}

// Evict implements cache.Engine.
func (c *Cache) Evict(req *cache.Request) {
	if c.list.Tail() == nil && c.pointer == nil {
		cache.Fatalf(c.common.EffectiveLogger(), "shiftsieve: Evict called on an empty cache")
		return
	}
	victim := c.selectVictim()
	c.list.Remove(victim)
	cache.EvictBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), c.common.Metrics, cache.EvictPolicy, victim)
}

// Remove implements cache.Engine.
func (c *Cache) Remove(objID uint64) bool {
	n, ok := c.idx.Find(objID)
	if !ok {
		return false
	}
	if n == c.pointer {
		c.pointer = n.Links().Prev()
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
			return fmt.Errorf("shiftsieve: node %d in list but not indexed to itself", node.ID())
		}
		n++
		size += int64(node.Size()) + c.common.ObjMDSize()
	}
	if n != c.idx.Len() {
		return fmt.Errorf("shiftsieve: list has %d nodes, index has %d", n, c.idx.Len())
	}
	if int64(n) != c.NObj() {
		return fmt.Errorf("shiftsieve: list has %d nodes, counters say %d", n, c.NObj())
	}
	if size != c.OccupiedByte() {
		return fmt.Errorf("shiftsieve: list bytes %d, counters say %d", size, c.OccupiedByte())
	}
	return nil
}

// Close implements cache.Engine.
func (c *Cache) Close() error { return nil }
