package cache

// Request is a single access record from the trace driver. Engines consume
// ObjID/ObjSize directly; ClockTime, TTL and NextAccessVTime are carried on
// the struct but no engine reads them (TTL expiry is out of scope for these
// engines). Resident objects do not store NextAccessVTime, and
// CopyFromObject fills only ObjID/ObjSize, so it is not carried over when
// Shift re-inserts a shuttled victim into its retention sub-cache.
type Request struct {
	ObjID           uint64
	ObjSize         uint32
	ClockTime       int64
	TTL             int64
	NextAccessVTime int64
}

// CopyFromObject populates req's identity fields from a resident object,
// the Go analogue of copy_cache_obj_to_request: used when an engine needs
// to re-request an object it is about to evict under a different policy
// (e.g. Shift reinserting a shuttled victim into retention).
func CopyFromObject(req *Request, obj Object) {
	req.ObjID = obj.ID()
	req.ObjSize = obj.Size()
}
