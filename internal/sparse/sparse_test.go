package sparse

import "testing"

func TestSetBasic(t *testing.T) {
	s := New(16)

	if s.Len() != 0 {
		t.Fatalf("new set should be empty, got len %d", s.Len())
	}
	if s.Contains(5) {
		t.Fatal("empty set should not contain 5")
	}

	if !s.Insert(5) {
		t.Fatal("first insert of 5 should report true")
	}
	if s.Insert(5) {
		t.Fatal("duplicate insert of 5 should report false")
	}
	if !s.Contains(5) {
		t.Fatal("set should contain 5 after insert")
	}
	if s.Len() != 1 {
		t.Fatalf("len should be 1, got %d", s.Len())
	}
}

func TestSetInsertionOrder(t *testing.T) {
	s := New(16)
	for _, v := range []uint32{5, 2, 8, 1} {
		s.Insert(v)
	}

	want := []uint32{5, 2, 8, 1}
	got := s.Values()
	if len(got) != len(want) {
		t.Fatalf("want %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: want %d, got %d", i, want[i], got[i])
		}
	}
}

func TestSetClearReusesCapacity(t *testing.T) {
	s := New(8)
	for v := uint32(0); v < 8; v++ {
		s.Insert(v)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("cleared set should be empty, got len %d", s.Len())
	}
	if s.Contains(3) {
		t.Fatal("cleared set should not report stale membership")
	}

	for v := uint32(0); v < 8; v++ {
		s.Insert(v)
	}
	if s.Len() != 8 {
		t.Fatalf("set should accept re-inserts after clear, got len %d", s.Len())
	}
}

func TestSetOutOfRangeNeverContained(t *testing.T) {
	s := New(4)
	if s.Contains(100) {
		t.Fatal("value outside capacity must never be reported as contained")
	}
}
