package cache

// Object is the read-only view of a resident node every engine exposes to
// callers (Find/Insert/ToEvict results). Concrete node types are defined
// per policy package, not here — per the spec's recommendation, the three
// engines never share a node type, only this common accessor surface.
type Object interface {
	// ID returns the object identifier the hash index keys on.
	ID() uint64
	// Size returns the object's accounted byte size.
	Size() uint32
}

// ObjectBase carries the fields every policy's node embeds: the hash-index
// key and the byte size used for capacity bookkeeping. Embedding it gives a
// node type its ID()/Size() methods for free.
type ObjectBase struct {
	ObjID   uint64
	ObjSize uint32
}

// ID implements Object.
func (o *ObjectBase) ID() uint64 { return o.ObjID }

// Size implements Object.
func (o *ObjectBase) Size() uint32 { return o.ObjSize }
