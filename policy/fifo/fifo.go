// Package fifo implements the plain insertion-order eviction engine: no
// promotion on access, victim always at the tail. It is usable on its own,
// but its primary role in this module is as the building block Shift nests
// two instances of (an eviction queue and a retention queue) — which is why
// Cache additionally exposes List, NodeFor, and node frequency accessors
// that no other policy package needs.
package fifo

import (
	"fmt"

	"github.com/hey-kong/lever/cache"
	"github.com/hey-kong/lever/index"
	"github.com/hey-kong/lever/internal/intrusive"
)

// Node is a resident object's FIFO slot. freq is unused by Cache itself but
// is read and written directly by policy/shift, which repurposes it to
// count visits in both of its queues.
type Node struct {
	cache.ObjectBase
	links intrusive.Links[Node]
	freq  uint8
}

// Links implements intrusive.Elem[Node].
func (n *Node) Links() *intrusive.Links[Node] { return &n.links }

// Freq returns the node's visit counter.
func (n *Node) Freq() uint8 { return n.freq }

// SetFreq overwrites the node's visit counter.
func (n *Node) SetFreq(f uint8) { n.freq = f }

// Cache is a FIFO eviction engine: Insert always goes to the head, Find
// never reorders, Evict always takes the tail.
type Cache struct {
	common cache.CommonParams
	idx    index.Index[*Node]
	list   intrusive.List[Node, *Node]
	cache.Counters
}

var _ cache.Engine = (*Cache)(nil)

// New constructs a FIFO engine.
func New(common cache.CommonParams) *Cache {
	return &Cache{common: common, idx: index.New[*Node]()}
}

func init() {
	cache.Register("FIFO", func(c cache.CommonParams) cache.Engine { return New(c) })
}

// Name returns "FIFO".
func (c *Cache) Name() string { return "FIFO" }

// List exposes the underlying intrusive list so policy/shift can move a hit
// node to the head of its own sub-cache without a second lookup.
func (c *Cache) List() *intrusive.List[Node, *Node] { return &c.list }

// NodeFor returns the resident node for objID, or nil if absent, for
// callers (policy/shift) that need direct field access beyond cache.Object.
func (c *Cache) NodeFor(objID uint64) *Node {
	n, ok := c.idx.Find(objID)
	if !ok {
		return nil
	}
	return n
}

// Get implements cache.Engine.
func (c *Cache) Get(req *cache.Request) bool {
	return cache.GetBase(c, req, c.common.CapacityByte, c.common.ObjMDSize(), c.common.Metrics)
}

// Find implements cache.Engine. FIFO never reorders on access.
func (c *Cache) Find(req *cache.Request, updateCache bool) (cache.Object, bool) {
	n, ok := c.idx.Find(req.ObjID)
	if !ok {
		return nil, false
	}
	return n, true
}

// Insert implements cache.Engine: new objects enter at the head.
func (c *Cache) Insert(req *cache.Request) cache.Object {
	n := &Node{ObjectBase: cache.ObjectBase{ObjID: req.ObjID, ObjSize: req.ObjSize}}
	c.list.PrependToHead(n)
	cache.InsertBase[*Node](c.idx, &c.Counters, c.common.ObjMDSize(), n)
	return n
}

// Evict implements cache.Engine: the tail is always the victim.
func (c *Cache) Evict(req *cache.Request) {
	victim := c.list.Tail()
	if victim == nil {
		cache.Fatalf(c.common.EffectiveLogger(), "fifo: Evict called on an empty cache")
		return
	}
	c.list.Remove(victim)
	cache.EvictBase[*Node](c.idx, &c.Counters, c.common.ObjMDSize(), c.common.Metrics, cache.EvictPolicy, victim)
}

// ToEvict implements cache.Engine: peeks the tail without mutating state.
func (c *Cache) ToEvict(req *cache.Request) (cache.Object, bool) {
	victim := c.list.Tail()
	if victim == nil {
		return nil, false
	}
	return victim, true
}

// Remove implements cache.Engine.
func (c *Cache) Remove(objID uint64) bool {
	n, ok := c.idx.Find(objID)
	if !ok {
		return false
	}
	c.list.Remove(n)
	cache.EvictBase[*Node](c.idx, &c.Counters, c.common.ObjMDSize(), c.common.Metrics, cache.EvictUserRemove, n)
	return true
}

// Verify implements cache.Engine.
func (c *Cache) Verify() error {
	n := 0
	var size int64
	for node := c.list.Head(); node != nil; node = node.Links().Next() {
		got, ok := c.idx.Find(node.ID())
		if !ok || got != node {
			return fmt.Errorf("fifo: node %d in list but not indexed to itself", node.ID())
		}
		n++
		size += int64(node.Size()) + c.common.ObjMDSize()
	}
	if n != c.idx.Len() {
		return fmt.Errorf("fifo: list has %d nodes, index has %d", n, c.idx.Len())
	}
	if int64(n) != c.NObj() {
		return fmt.Errorf("fifo: list has %d nodes, counters say %d", n, c.NObj())
	}
	if size != c.OccupiedByte() {
		return fmt.Errorf("fifo: list bytes %d, counters say %d", size, c.OccupiedByte())
	}
	return nil
}

// Close implements cache.Engine.
func (c *Cache) Close() error { return nil }
