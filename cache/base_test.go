package cache

import "testing"

// fakeEngine is a minimal Engine double used to exercise GetBase in
// isolation, the same way the teacher's mockHooks exercised policy.Hooks.
type fakeEngine struct {
	findHit   bool
	findObj   *fakeObject
	evictCnt  int
	insertCnt int
	occupied  int64

	// evictDrain shrinks occupied by this much per Evict call, simulating
	// a policy that frees space.
	evictDrain int64
}

type fakeObject struct {
	id   uint64
	size uint32
}

func (o *fakeObject) ID() uint64   { return o.id }
func (o *fakeObject) Size() uint32 { return o.size }

func (e *fakeEngine) Name() string { return "fake" }
func (e *fakeEngine) Get(req *Request) bool {
	return GetBase(e, req, 10, 0, nil)
}
func (e *fakeEngine) Find(req *Request, updateCache bool) (Object, bool) {
	if e.findHit {
		return e.findObj, true
	}
	return nil, false
}
func (e *fakeEngine) Insert(req *Request) Object {
	e.insertCnt++
	return &fakeObject{id: req.ObjID, size: req.ObjSize}
}
func (e *fakeEngine) Evict(req *Request) {
	e.evictCnt++
	e.occupied -= e.evictDrain
}
func (e *fakeEngine) ToEvict(req *Request) (Object, bool) { return nil, false }
func (e *fakeEngine) Remove(objID uint64) bool            { return false }
func (e *fakeEngine) NObj() int64                         { return 0 }
func (e *fakeEngine) OccupiedByte() int64                 { return e.occupied }
func (e *fakeEngine) Verify() error                       { return nil }
func (e *fakeEngine) Close() error                        { return nil }

var _ Engine = (*fakeEngine)(nil)

func TestGetBase_HitSkipsEvictAndInsert(t *testing.T) {
	e := &fakeEngine{findHit: true, findObj: &fakeObject{id: 1, size: 1}}
	if !GetBase(e, &Request{ObjID: 1}, 10, 0, nil) {
		t.Fatalf("GetBase must return true on a hit")
	}
	if e.evictCnt != 0 || e.insertCnt != 0 {
		t.Fatalf("a hit must not evict or insert, got evict=%d insert=%d", e.evictCnt, e.insertCnt)
	}
}

func TestGetBase_MissEvictsUntilRoomThenInserts(t *testing.T) {
	e := &fakeEngine{occupied: 12, evictDrain: 5}
	if GetBase(e, &Request{ObjID: 2, ObjSize: 1}, 10, 0, nil) {
		t.Fatalf("GetBase must return false on a miss")
	}
	if e.evictCnt != 1 {
		t.Fatalf("expected exactly one Evict call (occupied 12->7, and 7+1 fits capacity 10), got %d", e.evictCnt)
	}
	if e.insertCnt != 1 {
		t.Fatalf("expected exactly one Insert call, got %d", e.insertCnt)
	}
}

func TestGetBase_MissWithRoomSkipsEvict(t *testing.T) {
	e := &fakeEngine{occupied: 0}
	GetBase(e, &Request{ObjID: 3, ObjSize: 1}, 10, 0, nil)
	if e.evictCnt != 0 {
		t.Fatalf("no eviction should be needed, got %d calls", e.evictCnt)
	}
	if e.insertCnt != 1 {
		t.Fatalf("expected exactly one Insert call, got %d", e.insertCnt)
	}
}

func TestGetBase_MetricsHitAndMiss(t *testing.T) {
	var hits, misses int
	m := &countingMetrics{onHit: func() { hits++ }, onMiss: func() { misses++ }}

	hitEngine := &fakeEngine{findHit: true, findObj: &fakeObject{id: 1, size: 1}}
	GetBase(hitEngine, &Request{ObjID: 1}, 10, 0, m)
	if hits != 1 || misses != 0 {
		t.Fatalf("hit path: hits=%d misses=%d, want 1,0", hits, misses)
	}

	missEngine := &fakeEngine{}
	GetBase(missEngine, &Request{ObjID: 2, ObjSize: 1}, 10, 0, m)
	if hits != 1 || misses != 1 {
		t.Fatalf("miss path: hits=%d misses=%d, want 1,1", hits, misses)
	}
}

type countingMetrics struct {
	onHit  func()
	onMiss func()
}

func (m *countingMetrics) Hit()                    { m.onHit() }
func (m *countingMetrics) Miss()                   { m.onMiss() }
func (m *countingMetrics) Evict(EvictReason)       {}
func (m *countingMetrics) Size(int64, int64)       {}

var _ Metrics = (*countingMetrics)(nil)

func TestCounters_InsertAndEvict(t *testing.T) {
	var c Counters
	c.onInsert(4, 1)
	c.onInsert(6, 1)
	if c.NObj() != 2 || c.OccupiedByte() != 12 {
		t.Fatalf("after two inserts: nObj=%d occupiedByte=%d, want 2,12", c.NObj(), c.OccupiedByte())
	}
	c.onEvict(4, 1)
	if c.NObj() != 1 || c.OccupiedByte() != 7 {
		t.Fatalf("after one evict: nObj=%d occupiedByte=%d, want 1,7", c.NObj(), c.OccupiedByte())
	}
}

func TestInsertBaseAndEvictBase(t *testing.T) {
	idx := newTestIndex()
	var counters Counters
	obj := &fakeObject{id: 7, size: 3}

	InsertBase[*fakeObject](idx, &counters, 1, obj)
	if got, ok := idx.Find(7); !ok || got != obj {
		t.Fatalf("InsertBase must index the object")
	}
	if counters.NObj() != 1 || counters.OccupiedByte() != 4 {
		t.Fatalf("InsertBase counters = %d,%d want 1,4", counters.NObj(), counters.OccupiedByte())
	}

	var reason EvictReason
	m := &countingMetrics{onHit: func() {}, onMiss: func() {}}
	evictReasonMetrics := &reasonCapture{countingMetrics: m}
	EvictBase[*fakeObject](idx, &counters, 1, evictReasonMetrics, EvictPolicy, obj)
	reason = evictReasonMetrics.last

	if _, ok := idx.Find(7); ok {
		t.Fatalf("EvictBase must remove the object from the index")
	}
	if counters.NObj() != 0 || counters.OccupiedByte() != 0 {
		t.Fatalf("EvictBase counters = %d,%d want 0,0", counters.NObj(), counters.OccupiedByte())
	}
	if reason != EvictPolicy {
		t.Fatalf("reason = %v, want EvictPolicy", reason)
	}
}

type reasonCapture struct {
	*countingMetrics
	last EvictReason
}

func (r *reasonCapture) Evict(reason EvictReason) { r.last = reason }

// newTestIndex avoids importing the index package's concrete type; it uses
// a tiny map directly to keep this test file dependency-light.
func newTestIndex() *simpleIdx { return &simpleIdx{m: make(map[uint64]*fakeObject)} }

type simpleIdx struct{ m map[uint64]*fakeObject }

func (s *simpleIdx) Find(id uint64) (*fakeObject, bool) { v, ok := s.m[id]; return v, ok }
func (s *simpleIdx) Insert(id uint64, n *fakeObject)    { s.m[id] = n }
func (s *simpleIdx) Remove(id uint64)                   { delete(s.m, id) }
func (s *simpleIdx) Len() int                           { return len(s.m) }
