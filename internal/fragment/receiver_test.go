package fragment_test

import (
	"testing"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/fragment"
)

func TestReassemblesInOrder(t *testing.T) {
	var acked []int
	r := fragment.NewReceiver(4, 10, func(id int) { acked = append(acked, id) })

	r.ProcessFragment(10, 3, 0, 4, []byte{1, 2, 3, 4})
	r.ProcessFragment(10, 3, 1, 4, []byte{5, 6, 7, 8})
	if _, ok := r.Block(); ok {
		t.Fatal("expected incomplete block")
	}
	r.ProcessFragment(10, 3, 2, 2, []byte{9, 10})

	block, ok := r.Block()
	if !ok {
		t.Fatal("expected complete block")
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	for i := range want {
		if block[i] != want[i] {
			t.Fatalf("block[%d] = %d, want %d", i, block[i], want[i])
		}
	}
	if len(acked) != 3 {
		t.Fatalf("expected 3 acks, got %v", acked)
	}
}

func TestReassemblesOutOfOrder(t *testing.T) {
	r := fragment.NewReceiver(4, 10, nil)
	r.ProcessFragment(10, 3, 2, 2, []byte{9, 10})
	r.ProcessFragment(10, 3, 0, 4, []byte{1, 2, 3, 4})
	r.ProcessFragment(10, 3, 1, 4, []byte{5, 6, 7, 8})
	block, ok := r.Block()
	if !ok || len(block) != 10 {
		t.Fatalf("expected complete 10-byte block, got %v %v", block, ok)
	}
}

func TestDuplicateFragmentStillAcksButDoesNotCorrupt(t *testing.T) {
	var acked []int
	r := fragment.NewReceiver(4, 10, func(id int) { acked = append(acked, id) })
	r.ProcessFragment(10, 3, 0, 4, []byte{1, 2, 3, 4})
	r.ProcessFragment(10, 3, 0, 4, []byte{9, 9, 9, 9}) // duplicate, different payload
	r.ProcessFragment(10, 3, 1, 4, []byte{5, 6, 7, 8})
	r.ProcessFragment(10, 3, 2, 2, []byte{9, 10})

	block, ok := r.Block()
	if !ok {
		t.Fatal("expected complete block")
	}
	if block[0] != 1 {
		t.Fatalf("expected first-arrival bytes to win, got %v", block[:4])
	}
	if len(acked) != 4 {
		t.Fatalf("expected 4 acks (including duplicate), got %v", acked)
	}
}

func TestBlockTooLargeLatches(t *testing.T) {
	r := fragment.NewReceiver(4, 10, nil)
	r.ProcessFragment(20, 5, 0, 4, []byte{1, 2, 3, 4})
	if r.Err() != fragment.ErrBlockTooLarge {
		t.Fatalf("expected ErrBlockTooLarge, got %v", r.Err())
	}
	// further fragments are ignored while latched.
	r.ProcessFragment(10, 3, 0, 4, []byte{1, 2, 3, 4})
	if _, ok := r.Block(); ok {
		t.Fatal("expected no block while latched")
	}
	r.Clear()
	if r.Err() != nil {
		t.Fatal("expected Clear to reset latched error")
	}
}

func TestMalformedFragmentIgnored(t *testing.T) {
	r := fragment.NewReceiver(4, 10, nil)
	r.ProcessFragment(10, 3, 5, 4, []byte{1, 2, 3, 4}) // fragmentID >= numFragments
	r.ProcessFragment(10, 3, 2, 4, []byte{1, 2, 3, 4}) // start=8, 8+4 overflows blockSize 10
	if _, ok := r.Block(); ok {
		t.Fatal("expected no complete block from malformed input")
	}
}
