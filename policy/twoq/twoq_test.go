package twoq

import (
	"testing"

	"github.com/hey-kong/lever/cache"
	"github.com/hey-kong/lever/cache/conformance"
)

func get(c *Cache, id uint64, size uint32) bool {
	return c.Get(&cache.Request{ObjID: id, ObjSize: size})
}

func TestTwoQ_FirstAdmissionGoesToA1in(t *testing.T) {
	c := New(cache.CommonParams{CapacityByte: 100})
	get(c, 1, 1)

	n, ok := c.idx.Find(1)
	if !ok {
		t.Fatalf("object 1 should be indexed")
	}
	if !n.inA1 {
		t.Fatalf("a first-time admission must land in A1in")
	}
}

func TestTwoQ_SecondAccessPromotesToAm(t *testing.T) {
	c := New(cache.CommonParams{CapacityByte: 100})
	get(c, 1, 1)
	get(c, 1, 1) // second access: promotes out of A1in

	n, _ := c.idx.Find(1)
	if n.inA1 {
		t.Fatalf("a second access should have promoted object 1 to Am")
	}
	if err := c.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestTwoQ_GhostGrantsSecondChanceDirectlyIntoAm(t *testing.T) {
	// Capacity 1 byte: A1in's budget (capacity/4 = 0) is exceeded by any
	// resident object, so eviction always draws from A1in and remembers a
	// ghost.
	c := New(cache.CommonParams{CapacityByte: 1})
	get(c, 1, 1)
	get(c, 2, 1) // evicts 1 from A1in, remembers it as a ghost
	get(c, 1, 1) // re-admission: ghost still remembered, straight into Am

	n, ok := c.idx.Find(1)
	if !ok {
		t.Fatalf("object 1 should be resident again")
	}
	if n.inA1 {
		t.Fatalf("a ghost-remembered re-admission must bypass A1in")
	}
	if _, stillGhost := c.ghostIdx.Find(1); stillGhost {
		t.Fatalf("the ghost entry should have been consumed on re-admission")
	}
	if err := c.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestTwoQ_RemoveFromA1inRemembersGhost(t *testing.T) {
	c := New(cache.CommonParams{CapacityByte: 100})
	get(c, 1, 1)
	if !c.Remove(1) {
		t.Fatalf("Remove(1) should report true")
	}
	if _, ok := c.ghostIdx.Find(1); !ok {
		t.Fatalf("removing an A1in-resident object should remember it as a ghost")
	}
}

func TestTwoQ_RoundTrip(t *testing.T) {
	c := New(cache.CommonParams{CapacityByte: 3})
	conformance.RoundTrip(t, c, 3)
}
