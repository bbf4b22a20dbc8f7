// Package trace reads the simple CSV request trace cmd/tracebench replays:
// one request per line, "clock_time,obj_id[,obj_size]", with obj_size
// defaulting to 1 when absent. Blank lines and lines starting with '#' are
// skipped.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hey-kong/lever/cache"
)

// Request is one parsed trace line.
type Request struct {
	ClockTime int64
	ObjID     uint64
	ObjSize   uint32
}

// ToCacheRequest fills dst from r, the shape cache.Engine.Get accepts.
func (r Request) ToCacheRequest(dst *cache.Request) {
	dst.ClockTime = r.ClockTime
	dst.ObjID = r.ObjID
	dst.ObjSize = r.ObjSize
}

// Reader reads Requests from a CSV trace one line at a time.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader wraps r as a trace Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next request, or io.EOF once the trace is exhausted.
func (t *Reader) Next() (Request, error) {
	for t.scanner.Scan() {
		t.line++
		line := strings.TrimSpace(t.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return Request{}, fmt.Errorf("trace line %d: want at least \"clock_time,obj_id[,obj_size]\", got %q", t.line, line)
		}
		clockTime, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return Request{}, fmt.Errorf("trace line %d: clock_time: %w", t.line, err)
		}
		objID, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return Request{}, fmt.Errorf("trace line %d: obj_id: %w", t.line, err)
		}
		var objSize uint64 = 1
		if len(fields) >= 3 && strings.TrimSpace(fields[2]) != "" {
			objSize, err = strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
			if err != nil {
				return Request{}, fmt.Errorf("trace line %d: obj_size: %w", t.line, err)
			}
		}
		return Request{ClockTime: clockTime, ObjID: objID, ObjSize: uint32(objSize)}, nil
	}
	if err := t.scanner.Err(); err != nil {
		return Request{}, err
	}
	return Request{}, io.EOF
}
