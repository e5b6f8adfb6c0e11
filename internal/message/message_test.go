package message_test

import (
	"testing"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/bitstream"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/message"
)

func TestBlockMessageRoundTrip(t *testing.T) {
	orig := message.NewBlockMessage([]byte("hello block"))
	orig.SetID(42)

	w := bitstream.NewWriter()
	if err := orig.Serialize(w); err != nil {
		t.Fatal(err)
	}

	got := &message.BlockMessage{}
	r := bitstream.NewReader(w.Bytes())
	if err := got.Deserialize(r); err != nil {
		t.Fatal(err)
	}

	if string(got.Data) != string(orig.Data) {
		t.Fatalf("got %q, want %q", got.Data, orig.Data)
	}
}

func TestBlockMessageMeasureMatchesWrite(t *testing.T) {
	orig := message.NewBlockMessage([]byte("measure me"))

	w := bitstream.NewWriter()
	if err := orig.Serialize(w); err != nil {
		t.Fatal(err)
	}
	m := bitstream.NewMeasurer()
	if err := orig.Serialize(m); err != nil {
		t.Fatal(err)
	}

	if w.BitsWritten() != m.BitsWritten() {
		t.Fatalf("writer %d bits, measurer %d bits", w.BitsWritten(), m.BitsWritten())
	}
}

func TestDirectionString(t *testing.T) {
	if message.DirectionOutgoing.String() != "outgoing" {
		t.Fatal("expected outgoing")
	}
	if message.DirectionIncoming.String() != "incoming" {
		t.Fatal("expected incoming")
	}
}
