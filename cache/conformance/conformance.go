// Package conformance holds property checks shared across policy packages:
// behavior every cache.Engine must exhibit regardless of its eviction
// order, so each policy's _test.go can assert it with one call instead of
// re-deriving it.
package conformance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hey-kong/lever/cache"
)

// RoundTrip asserts the basic admission law (§8): inserting n distinct
// size-1 objects into a cache capacitated for exactly n of them all miss on
// first touch, then all hit while nothing else disturbs the cache, and the
// engine's own Verify agrees throughout.
func RoundTrip(t *testing.T, e cache.Engine, n int) {
	t.Helper()
	req := &cache.Request{}

	for id := uint64(1); id <= uint64(n); id++ {
		req.ObjID, req.ObjSize = id, 1
		require.Falsef(t, e.Get(req), "object %d: expected a miss on first insertion", id)
	}
	require.NoError(t, e.Verify())

	for id := uint64(1); id <= uint64(n); id++ {
		req.ObjID, req.ObjSize = id, 1
		require.Truef(t, e.Get(req), "object %d: expected a hit while unpressured", id)
	}
	require.NoError(t, e.Verify())
	require.EqualValues(t, n, e.NObj())
}

// NeverExceedsCapacity drives req sequence through e and asserts
// OccupiedByte never exceeds capacityByte after any single request
// completes — the invariant GetBase's evict-until-room loop exists to
// uphold.
func NeverExceedsCapacity(t *testing.T, e cache.Engine, capacityByte int64, ids []uint64, size uint32) {
	t.Helper()
	req := &cache.Request{ObjSize: size}
	for _, id := range ids {
		req.ObjID = id
		e.Get(req)
		require.LessOrEqualf(t, e.OccupiedByte(), capacityByte,
			"object %d: OccupiedByte %d exceeds capacity %d", id, e.OccupiedByte(), capacityByte)
	}
}

// RemoveIsIdempotent asserts that Remove reports true exactly once for a
// resident id and false on every call thereafter, and that the object is no
// longer found via Find after removal.
func RemoveIsIdempotent(t *testing.T, e cache.Engine, id uint64) {
	t.Helper()
	req := &cache.Request{ObjID: id, ObjSize: 1}
	e.Get(req) // ensure residency

	require.Truef(t, e.Remove(id), "first Remove(%d) should report true", id)
	require.Falsef(t, e.Remove(id), "second Remove(%d) should report false", id)

	_, hit := e.Find(req, false)
	require.Falsef(t, hit, "object %d should not be found after Remove", id)
}
