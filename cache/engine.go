package cache

// Engine is the uniform entry point every eviction policy implements:
// find/insert/evict/remove/to_evict plus the accessors a driver polls
// between requests. All methods are synchronous and complete before
// returning; an Engine is owned by a single caller at a time (engines are
// single-threaded by contract — see spec §5).
type Engine interface {
	// Name identifies the policy ("Lever", "Shift", "ShiftSieve", ...).
	Name() string

	// Get is the single entry point a trace driver calls per request: on a
	// hit it promotes the object and returns true; on a miss it evicts
	// until there is room, inserts, and returns false.
	Get(req *Request) bool

	// Find looks up req.ObjID via the hash index. If updateCache is true
	// and the object is present, policy-specific promotion runs before
	// Find returns.
	Find(req *Request, updateCache bool) (Object, bool)

	// Insert assumes space has already been made (by Evict) and places a
	// new object per policy, typically at the head of the eviction order.
	Insert(req *Request) Object

	// Evict chooses a victim per policy, unlinks it, and removes it from
	// the hash index and counters. req is the request that triggered the
	// eviction; most policies ignore it.
	Evict(req *Request)

	// ToEvict peeks the object Evict would currently choose, without
	// mutating any state. Not every policy can support this as a true
	// peek: Shift does not support it at all (see its ToEvict doc), and
	// ShiftSieve's ToEvict advances its hand and status bits exactly as
	// Evict does (see its selectVictim doc).
	ToEvict(req *Request) (Object, bool)

	// Remove deletes obj_id if present, for user-initiated deletion (as
	// opposed to policy-driven Evict).
	Remove(objID uint64) bool

	// NObj returns the number of resident objects.
	NObj() int64
	// OccupiedByte returns the total accounted bytes resident, including
	// per-object metadata overhead when CommonParams.ConsiderObjMetadata
	// is set.
	OccupiedByte() int64

	// Verify walks the engine's internal structures and returns an error
	// describing the first invariant violation found (§8 Testable
	// Properties), or nil if everything is consistent. Intended for tests,
	// not the request hot path.
	Verify() error

	// Close releases any resources the engine owns (sub-caches, request
	// buffers). The current engines own nothing that needs releasing
	// beyond garbage-collected memory, but Close is part of the contract
	// so callers can always defer it.
	Close() error
}
