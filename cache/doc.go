// Package cache defines the shared contract every in-memory eviction
// engine in this module implements, plus the bookkeeping every engine
// shares: the object/request shapes, the Engine interface, the base hooks
// (GetBase/InsertBase/EvictBase) each policy's Get/Insert/Evict delegates
// to, and a small name-based registry policies register themselves into.
//
// Design
//
//   - Concurrency: an Engine is owned by one caller at a time; there is no
//     internal locking (eviction policies are single-threaded by contract —
//     see the root spec's Non-goals). Callers that need concurrent access
//     must serialize it themselves, e.g. one Engine per shard/goroutine.
//
//   - Storage: each policy package defines its own node type embedding
//     ObjectBase and an intrusive.Links field, and keeps its own
//     index.Index[*node] + intrusive.List[node, *node]. cache itself holds
//     no storage; it only defines the shapes and shared bookkeeping.
//
//   - Policies: Lever (policy/lever), Shift (policy/shift), and ShiftSieve
//     (policy/shiftsieve) are the three specified engines; policy/fifo is
//     the plain FIFO building block Shift nests two of; policy/twoq is a
//     fourth, optional policy carried over from this module's ancestor
//     (not required by the spec, included because it was already fully
//     grounded and cleanly adaptable to the same contract).
//
//   - Metrics: CommonParams.Metrics receives Hit/Miss/Evict/Size signals.
//     A nil Metrics disables reporting; metrics/prom adapts the interface
//     to Prometheus.
//
//   - Fatal errors: structural invariant violations (a marker dangling, an
//     operation a policy doesn't support) call Fatalf, which logs and
//     terminates the process — the Go analogue of the reference engines'
//     ERROR(...) macro.
//
// Basic usage
//
//	c := lever.New(cache.CommonParams{CapacityByte: 3})
//	req := &cache.Request{ObjID: 1, ObjSize: 1}
//	hit := c.Get(req) // false: miss, object inserted
//	hit = c.Get(req)  // true: now resident
//
// Picking a policy by name (registry)
//
//	// policy packages register themselves in their init(); importing them
//	// for their side effect is enough to make NewEngine recognize them.
//	import _ "github.com/hey-kong/lever/policy/lever"
//
//	e, ok := cache.NewEngine("Lever", cache.CommonParams{CapacityByte: 1 << 20})
//
// Exporting metrics (Prometheus adapter)
//
//	m := prom.New(nil, "cachex", "lever", nil) // implements cache.Metrics
//	e := lever.New(cache.CommonParams{CapacityByte: 1 << 20, Metrics: m})
package cache
