package trace

import (
	"io"
	"strings"
	"testing"
)

func TestReader_ParsesClockIDAndSize(t *testing.T) {
	r := NewReader(strings.NewReader("# comment\n\n1,10,100\n2,11\n"))

	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := Request{ClockTime: 1, ObjID: 10, ObjSize: 100}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	got, err = r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want = Request{ClockTime: 2, ObjID: 11, ObjSize: 1}
	if got != want {
		t.Fatalf("got %+v, want %+v (default size 1)", got, want)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of trace, got %v", err)
	}
}

func TestReader_RejectsMalformedLine(t *testing.T) {
	r := NewReader(strings.NewReader("not-a-number,10\n"))
	if _, err := r.Next(); err == nil {
		t.Fatalf("expected an error for a malformed clock_time field")
	}
}

func TestReader_RejectsTooFewFields(t *testing.T) {
	r := NewReader(strings.NewReader("1\n"))
	if _, err := r.Next(); err == nil {
		t.Fatalf("expected an error for a line missing obj_id")
	}
}
