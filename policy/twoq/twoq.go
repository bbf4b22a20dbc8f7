// Package twoq implements 2Q: two resident queues plus a ghost list of
// recently evicted identities. First-time admissions enter A1in; an object
// is only promoted to the main queue Am once it is accessed again while
// still in A1in, or if it re-enters while its id is still remembered in the
// ghost list (a "second chance" admission straight into Am). Evicting from
// A1in pushes the victim's id into the ghost list; evicting from Am does
// not.
//
// This is not one of the three policies required of this module; it is
// carried over from this module's ancestor because it was already fully
// grounded and cleanly adaptable onto the same Engine contract.
package twoq

import (
	"fmt"

	"github.com/hey-kong/lever/cache"
	"github.com/hey-kong/lever/index"
	"github.com/hey-kong/lever/internal/intrusive"
)

// node is a resident object's slot in either A1in or Am.
type node struct {
	cache.ObjectBase
	links intrusive.Links[node]
	inA1  bool
}

func (n *node) Links() *intrusive.Links[node] { return &n.links }

// ghost is a remembered identity with no payload: just enough to recognize
// a re-admission and grant it a second chance.
type ghost struct {
	id    uint64
	links intrusive.Links[ghost]
}

func (g *ghost) ID() uint64                     { return g.id }
func (g *ghost) Links() *intrusive.Links[ghost] { return &g.links }

// Cache implements the 2Q policy.
type Cache struct {
	common cache.CommonParams
	idx    index.Index[*node]
	a1in   intrusive.List[node, *node]
	am     intrusive.List[node, *node]
	cache.Counters

	capInByte int64

	ghostIdx      index.Index[*ghost]
	ghostList     intrusive.List[ghost, *ghost]
	ghostCapacity int
}

var _ cache.Engine = (*Cache)(nil)

// New constructs a 2Q engine. A1in is budgeted at a quarter of the total
// byte capacity (the common rule of thumb for this policy); the ghost list
// tracks identities only and is sized generously in entry count, since it
// costs no resident bytes.
func New(common cache.CommonParams) *Cache {
	return &Cache{
		common:        common,
		idx:           index.New[*node](),
		capInByte:     common.CapacityByte / 4,
		ghostIdx:      index.New[*ghost](),
		ghostCapacity: 1024,
	}
}

func init() {
	cache.Register("2Q", func(c cache.CommonParams) cache.Engine { return New(c) })
}

// Name returns "2Q".
func (c *Cache) Name() string { return "2Q" }

// Get implements cache.Engine.
func (c *Cache) Get(req *cache.Request) bool {
	return cache.GetBase(c, req, c.common.CapacityByte, c.common.ObjMDSize(), c.common.Metrics)
}

// Find implements cache.Engine. A hit on an A1in-resident object promotes
// it to Am (it has now been accessed twice: once on admission, once here);
// a hit on an Am-resident object simply moves it to the head of Am.
func (c *Cache) Find(req *cache.Request, updateCache bool) (cache.Object, bool) {
	n, ok := c.idx.Find(req.ObjID)
	if !ok {
		return nil, false
	}
	if updateCache {
		if n.inA1 {
			c.a1in.Remove(n)
			c.am.PrependToHead(n)
			n.inA1 = false
		} else {
			c.am.MoveToHead(n)
		}
	}
	return n, true
}

// Insert implements cache.Engine. An id still remembered in the ghost list
// is admitted straight into Am (bypassing A1in) and the ghost entry is
// consumed; anything else is a first-time admission into A1in.
func (c *Cache) Insert(req *cache.Request) cache.Object {
	n := &node{ObjectBase: cache.ObjectBase{ObjID: req.ObjID, ObjSize: req.ObjSize}}

	if g, ok := c.ghostIdx.Find(req.ObjID); ok {
		c.ghostList.Remove(g)
		c.ghostIdx.Remove(req.ObjID)
		c.am.PrependToHead(n)
		n.inA1 = false
	} else {
		c.a1in.PrependToHead(n)
		n.inA1 = true
	}

	cache.InsertBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), n)
	return n
}

// ToEvict implements cache.Engine: A1in's tail is the victim whenever A1in
// holds more than its byte budget; otherwise Am's tail is, falling back to
// A1in's tail if Am is empty.
func (c *Cache) ToEvict(req *cache.Request) (cache.Object, bool) {
	if c.a1inBytes() > c.capInByte {
		if t := c.a1in.Tail(); t != nil {
			return t, true
		}
	}
	if t := c.am.Tail(); t != nil {
		return t, true
	}
	if t := c.a1in.Tail(); t != nil {
		return t, true
	}
	return nil, false
}

func (c *Cache) a1inBytes() int64 {
	var total int64
	for n := c.a1in.Head(); n != nil; n = n.Links().Next() {
		total += int64(n.Size()) + c.common.ObjMDSize()
	}
	return total
}

// Evict implements cache.Engine. A victim drawn from A1in has its id
// remembered in the ghost list (evicting the ghost list's own LRU entry if
// that list is now over capacity); a victim drawn from Am is simply
// dropped.
func (c *Cache) Evict(req *cache.Request) {
	victim, ok := c.ToEvict(req)
	if !ok {
		cache.Fatalf(c.common.EffectiveLogger(), "2q: Evict called on an empty cache")
		return
	}
	n := victim.(*node)
	if n.inA1 {
		c.a1in.Remove(n)
		c.rememberGhost(n.ID())
	} else {
		c.am.Remove(n)
	}
	cache.EvictBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), c.common.Metrics, cache.EvictPolicy, n)
}

func (c *Cache) rememberGhost(id uint64) {
	if _, ok := c.ghostIdx.Find(id); ok {
		return
	}
	g := &ghost{id: id}
	c.ghostList.PrependToHead(g)
	c.ghostIdx.Insert(id, g)
	for c.ghostIdx.Len() > c.ghostCapacity {
		tail := c.ghostList.Tail()
		if tail == nil {
			break
		}
		c.ghostList.Remove(tail)
		c.ghostIdx.Remove(tail.ID())
	}
}

// Remove implements cache.Engine. Removing an A1in-resident object also
// remembers its id as a ghost, matching Evict's treatment — a user-
// initiated remove is otherwise indistinguishable from eviction here.
func (c *Cache) Remove(objID uint64) bool {
	n, ok := c.idx.Find(objID)
	if !ok {
		return false
	}
	if n.inA1 {
		c.a1in.Remove(n)
		c.rememberGhost(n.ID())
	} else {
		c.am.Remove(n)
	}
	cache.EvictBase[*node](c.idx, &c.Counters, c.common.ObjMDSize(), c.common.Metrics, cache.EvictUserRemove, n)
	return true
}

// Verify implements cache.Engine.
func (c *Cache) Verify() error {
	n := 0
	var size int64
	for node := c.a1in.Head(); node != nil; node = node.Links().Next() {
		if !node.inA1 {
			return fmt.Errorf("2q: node %d in A1in list but inA1 flag is false", node.ID())
		}
		got, ok := c.idx.Find(node.ID())
		if !ok || got != node {
			return fmt.Errorf("2q: node %d in A1in but not indexed to itself", node.ID())
		}
		n++
		size += int64(node.Size()) + c.common.ObjMDSize()
	}
	for node := c.am.Head(); node != nil; node = node.Links().Next() {
		if node.inA1 {
			return fmt.Errorf("2q: node %d in Am list but inA1 flag is true", node.ID())
		}
		got, ok := c.idx.Find(node.ID())
		if !ok || got != node {
			return fmt.Errorf("2q: node %d in Am but not indexed to itself", node.ID())
		}
		n++
		size += int64(node.Size()) + c.common.ObjMDSize()
	}
	if n != c.idx.Len() {
		return fmt.Errorf("2q: lists have %d nodes total, index has %d", n, c.idx.Len())
	}
	if int64(n) != c.NObj() {
		return fmt.Errorf("2q: lists have %d nodes, counters say %d", n, c.NObj())
	}
	if size != c.OccupiedByte() {
		return fmt.Errorf("2q: lists bytes %d, counters say %d", size, c.OccupiedByte())
	}
	return nil
}

// Close implements cache.Engine.
func (c *Cache) Close() error { return nil }
