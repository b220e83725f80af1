package core

import "testing"

func TestZero(t *testing.T) {
	buf := []float64{1, -2, 3}
	Zero(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("index %d = %v, want 0", i, v)
		}
	}
}

func TestEnsureLenReusesCapacity(t *testing.T) {
	buf := make([]float64, 2, 8)
	got := EnsureLen(buf, 6)
	if len(got) != 6 || cap(got) != 8 {
		t.Fatalf("len=%d cap=%d, want 6/8", len(got), cap(got))
	}
	if &got[0] != &buf[0] {
		t.Fatal("expected backing array reuse")
	}

	grown := EnsureLen(buf, 16)
	if len(grown) != 16 {
		t.Fatalf("len=%d, want 16", len(grown))
	}

	if empty := EnsureLen(buf, 0); len(empty) != 0 {
		t.Fatalf("len=%d, want 0", len(empty))
	}
}
