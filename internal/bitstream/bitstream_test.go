package bitstream_test

import (
	"testing"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/bitstream"
)

func TestBitsRequired(t *testing.T) {
	cases := []struct {
		min, max, want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0, 2, 2},
		{0, 255, 8},
		{0, 256, 9},
		{0, 65535, 16},
		{0, 31, 5},
	}
	for _, c := range cases {
		if got := bitstream.BitsRequired(c.min, c.max); got != c.want {
			t.Errorf("BitsRequired(%d,%d) = %d, want %d", c.min, c.max, got, c.want)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	w := bitstream.NewWriter()
	if err := w.WriteInt(17, 0, 31); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBits(0xABCD, 16); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBytes([]byte{0x11, 0x22, 0x33}); err != nil {
		t.Fatal(err)
	}

	r := bitstream.NewReader(w.Bytes())
	v, err := r.ReadInt(0, 31)
	if err != nil || v != 17 {
		t.Fatalf("ReadInt = %d, %v, want 17", v, err)
	}
	bits, err := r.ReadBits(16)
	if err != nil || bits != 0xABCD {
		t.Fatalf("ReadBits = %#x, %v, want 0xABCD", bits, err)
	}
	bs, err := r.ReadBytes(3)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x11, 0x22, 0x33}
	for i := range want {
		if bs[i] != want[i] {
			t.Fatalf("ReadBytes[%d] = %#x, want %#x", i, bs[i], want[i])
		}
	}
}

func TestMeasurerMatchesWriter(t *testing.T) {
	w := bitstream.NewWriter()
	m := bitstream.NewMeasurer()

	writeBoth := func(f func(s bitstream.Stream) error) {
		if err := f(w); err != nil {
			t.Fatal(err)
		}
		if err := f(m); err != nil {
			t.Fatal(err)
		}
	}

	writeBoth(func(s bitstream.Stream) error { return s.WriteInt(5, 0, 31) })
	writeBoth(func(s bitstream.Stream) error { return s.WriteBits(123, 8) })
	writeBoth(func(s bitstream.Stream) error { return s.WriteBytes([]byte{1, 2, 3, 4}) })

	if w.BitsWritten() != m.BitsWritten() {
		t.Fatalf("writer wrote %d bits, measurer counted %d", w.BitsWritten(), m.BitsWritten())
	}
}

func TestReadPastEndErrors(t *testing.T) {
	r := bitstream.NewReader([]byte{0xFF})
	if _, err := r.ReadBits(9); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}
