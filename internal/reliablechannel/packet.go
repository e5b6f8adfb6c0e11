package reliablechannel

import (
	"fmt"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/bitstream"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/message"
)

// typeBits returns the bit width of a message type tag given the
// factory's maximum type value.
func typeBits(maxType uint8) int {
	return bitstream.BitsRequired(0, int(maxType))
}

// messageOverheadBits is the per-message framing cost beyond the
// message's own serialized payload: a 16-bit id plus the type tag.
func messageOverheadBits(maxType uint8) int {
	return 16 + typeBits(maxType)
}

// EncodePacket writes the wire shape of one reliable batch: a bounded
// message count, then for each message its type, 16-bit id, and payload.
func EncodePacket(w *bitstream.Writer, msgs []message.Message, maxMessagesPerPacket int, maxType uint8) error {
	if err := w.WriteInt(len(msgs), 0, maxMessagesPerPacket); err != nil {
		return err
	}
	for _, m := range msgs {
		if err := w.WriteInt(int(m.Type()), 0, int(maxType)); err != nil {
			return err
		}
		if err := w.WriteBits(uint32(m.ID()), 16); err != nil {
			return err
		}
		if err := m.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// DecodePacket reads a batch encoded by EncodePacket, constructing each
// message via factory. On a decode error partway through, it returns the
// messages successfully decoded so far alongside the error — see
// ProcessData for how a mid-packet failure is handled.
func DecodePacket(r *bitstream.Reader, factory message.Factory, maxMessagesPerPacket int) ([]message.Message, error) {
	maxType := factory.MaxType()
	count, err := r.ReadInt(0, maxMessagesPerPacket)
	if err != nil {
		return nil, fmt.Errorf("reliablechannel: decode message count: %w", err)
	}
	msgs := make([]message.Message, 0, count)
	for i := 0; i < count; i++ {
		t, err := r.ReadInt(0, int(maxType))
		if err != nil {
			return msgs, fmt.Errorf("reliablechannel: decode type at index %d: %w", i, err)
		}
		id, err := r.ReadBits(16)
		if err != nil {
			return msgs, fmt.Errorf("reliablechannel: decode id at index %d: %w", i, err)
		}
		m, err := factory.Create(uint8(t))
		if err != nil {
			return msgs, fmt.Errorf("reliablechannel: create message type %d: %w", t, err)
		}
		m.SetID(uint16(id))
		if err := m.Deserialize(r); err != nil {
			return msgs, fmt.Errorf("reliablechannel: deserialize message id %d: %w", id, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// MeasureMessage returns the total bit cost of serializing m, including
// its framing overhead (id + type tag) — the value cached on a send-queue
// slot at enqueue time.
func MeasureMessage(m message.Message, maxType uint8) (int, error) {
	meas := bitstream.NewMeasurer()
	if err := m.Serialize(meas); err != nil {
		return 0, err
	}
	return messageOverheadBits(maxType) + meas.BitsWritten(), nil
}
