package cache

import "go.uber.org/zap"

// CommonParams carries the parameters every engine's init accepts,
// independent of policy. PolicyParams is unused by Lever/Shift/ShiftSieve
// (they take no tunables) but is kept on the struct so the contract matches
// engines that do need one.
type CommonParams struct {
	// CapacityByte is the total byte budget Get enforces before inserting.
	CapacityByte int64
	// ConsiderObjMetadata, when true, charges one extra byte of per-object
	// metadata overhead against CapacityByte for every resident object.
	ConsiderObjMetadata bool
	// PolicyParams is reserved for policy-specific tuning strings; none of
	// the three built-in engines consume it.
	PolicyParams string

	// Metrics receives Hit/Miss/Evict/Size observability signals. Nil
	// disables reporting.
	Metrics Metrics
	// Logger receives structural invariant-violation diagnostics before
	// the process is terminated (see Fatalf). Nil falls back to a no-op
	// logger.
	Logger *zap.SugaredLogger
}

// ObjMDSize returns the per-object metadata overhead implied by
// ConsiderObjMetadata: 1 byte if considered, 0 otherwise.
func (p CommonParams) ObjMDSize() int64 {
	if p.ConsiderObjMetadata {
		return 1
	}
	return 0
}

// EffectiveLogger returns Logger, or a no-op logger if Logger is nil.
// Policy packages call this rather than reading the field directly so a
// zero-value CommonParams is always safe to use.
func (p CommonParams) EffectiveLogger() *zap.SugaredLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop().Sugar()
}
