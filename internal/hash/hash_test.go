package hash

import "testing"

func TestHash2_Stable(t *testing.T) {
	a := Hash2(42, 10, -3)
	b := Hash2(42, 10, -3)
	if a != b {
		t.Fatalf("expected stable hash, got %d and %d", a, b)
	}
}

func TestHash2_Decorrelated(t *testing.T) {
	seen := map[uint32]bool{}
	for x := -10; x < 10; x++ {
		for y := -10; y < 10; y++ {
			seen[Hash2(7, x, y)] = true
		}
	}
	if len(seen) < 390 {
		t.Fatalf("expected mostly unique hashes, got %d of 400", len(seen))
	}
}

func TestIntn_InRange(t *testing.T) {
	counts := make([]int, 3)
	for x := 0; x < 300; x++ {
		v := Intn(99, x, 5, 3)
		if v < 0 || v >= 3 {
			t.Fatalf("value %d out of range", v)
		}
		counts[v]++
	}
	for i, c := range counts {
		if c == 0 {
			t.Fatalf("value %d never chosen", i)
		}
	}
}

func TestSalt(t *testing.T) {
	if Salt(7, 1) != Salt(7, 1) {
		t.Fatal("expected stable salt")
	}

	seen := map[uint64]bool{}
	for salt := uint64(0); salt < 100; salt++ {
		seen[Salt(7, salt)] = true
	}
	if len(seen) != 100 {
		t.Fatalf("expected every salt to give a new seed, got %d of 100", len(seen))
	}
}
