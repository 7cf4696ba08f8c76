package ephemeral

import (
	"fmt"
	"testing"
)

func TestRingEvictsOldestFirst(t *testing.T) {
	r := NewRing[string](50)
	for i := 0; i < 51; i++ {
		r.Append(fmt.Sprintf("msg-%d", i))
	}
	items := r.Items()
	if len(items) != 50 {
		t.Fatalf("len = %d, want 50", len(items))
	}
	if items[0] != "msg-1" {
		t.Fatalf("oldest = %q, want msg-1 after eviction", items[0])
	}
	if items[49] != "msg-50" {
		t.Fatalf("newest = %q, want msg-50", items[49])
	}
}

func TestRingNeverExceedsCap(t *testing.T) {
	r := NewRing[int](3)
	for i := 0; i < 100; i++ {
		r.Append(i)
		if r.Len() > 3 {
			t.Fatalf("len = %d after %d appends", r.Len(), i+1)
		}
	}
}

func TestRingItemsIsACopy(t *testing.T) {
	r := NewRing[int](5)
	r.Append(1)
	items := r.Items()
	items[0] = 99
	if r.Items()[0] != 1 {
		t.Fatal("Items must copy the backing slice")
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing[int](5)
	r.Append(1)
	r.Reset()
	if r.Len() != 0 {
		t.Fatalf("len = %d after reset", r.Len())
	}
}
