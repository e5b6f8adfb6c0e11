package seqnum_test

import (
	"testing"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/seqnum"
)

func TestLessThanBasic(t *testing.T) {
	if !seqnum.LessThan(0, 1) {
		t.Fatal("expected 0 < 1")
	}
	if seqnum.LessThan(1, 0) {
		t.Fatal("expected 1 not< 0")
	}
	if seqnum.LessThan(5, 5) {
		t.Fatal("expected 5 not< 5")
	}
}

func TestLessThanWrap(t *testing.T) {
	// 0xFFFF precedes 0x0000 under wrap-aware ordering.
	if !seqnum.LessThan(0xFFFF, 0x0000) {
		t.Fatal("expected 0xFFFF < 0x0000 across wrap")
	}
	if seqnum.LessThan(0x0000, 0xFFFF) {
		t.Fatal("expected 0x0000 not< 0xFFFF across wrap")
	}
}

func TestGreaterThanIsInverse(t *testing.T) {
	if !seqnum.GreaterThan(1, 0) {
		t.Fatal("expected 1 > 0")
	}
	if !seqnum.GreaterThan(0x0000, 0xFFFF) {
		t.Fatal("expected 0x0000 > 0xFFFF across wrap")
	}
}

func TestTrichotomy(t *testing.T) {
	samples := []uint16{0, 1, 2, 0x7FFF, 0x8000, 0xFFFE, 0xFFFF}
	for _, a := range samples {
		for _, b := range samples {
			lt := seqnum.LessThan(a, b)
			gt := seqnum.GreaterThan(a, b)
			eq := seqnum.Equal(a, b)
			count := 0
			for _, v := range []bool{lt, gt, eq} {
				if v {
					count++
				}
			}
			if count != 1 {
				t.Fatalf("trichotomy violated for a=%#x b=%#x: lt=%v gt=%v eq=%v", a, b, lt, gt, eq)
			}
		}
	}
}
