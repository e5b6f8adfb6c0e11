// Package message defines the wire-object contract the reliable channel
// batches into packets, plus the small-block convenience wrapper and the
// shared Logger interface.
package message

import (
	"fmt"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/bitstream"
)

// Direction labels a message for logging as incoming or outgoing.
type Direction int

const (
	DirectionOutgoing Direction = iota
	DirectionIncoming
)

func (d Direction) String() string {
	if d == DirectionOutgoing {
		return "outgoing"
	}
	return "incoming"
}

// Message is the capability set the reliable channel requires of any
// application-level object it carries: a type tag known to the Factory, a
// mutable 16-bit id assigned at enqueue time, a self-serializer that runs
// identically under a Writer or a Measurer, and a Deserialize that reads
// the same shape back from a Reader.
type Message interface {
	// Type returns the message's type tag, in [0, Factory.MaxType()].
	Type() uint8

	// ID returns the 16-bit message id assigned by SendMessage.
	ID() uint16

	// SetID assigns the 16-bit message id; called once by SendMessage.
	SetID(id uint16)

	// Serialize runs this message's fields through stream, in either
	// write or measure mode depending on the concrete Stream passed.
	Serialize(stream bitstream.Stream) error

	// Deserialize populates this message's fields by reading from r. Called
	// on a freshly Factory.Create'd message on the receive path.
	Deserialize(r *bitstream.Reader) error
}

// Factory constructs a fresh, zero-valued Message for a given type tag.
// MaxType bounds the type tag's bit width on the wire: ceil(log2(MaxType()+1)).
type Factory interface {
	MaxType() uint8
	Create(t uint8) (Message, error)
}

// ErrUnknownType is returned by a Factory when asked to create a type tag
// it does not recognize.
type ErrUnknownType struct {
	Type uint8
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("message: unknown type tag %d", e.Type)
}

// BlockType is the type tag reserved for BlockMessage across factories
// that support send-block. A factory is free to use a different tag as
// long as it registers BlockMessage under it. channeltest.FixedFactory,
// which cmd/channel-demo also uses, does not register BlockMessage.
const BlockType uint8 = 0xFF

// BlockMessage adapts a small opaque byte block into a Message so it can
// ride through the reliable channel exactly like any other message, as
// the channel's SendBlock convenience method does.
type BlockMessage struct {
	id   uint16
	Data []byte
}

// NewBlockMessage wraps data, which must not exceed the channel's
// configured maxSmallBlockSize (enforced by the caller, not here).
func NewBlockMessage(data []byte) *BlockMessage {
	return &BlockMessage{Data: data}
}

func (b *BlockMessage) Type() uint8     { return BlockType }
func (b *BlockMessage) ID() uint16      { return b.id }
func (b *BlockMessage) SetID(id uint16) { b.id = id }

// Serialize writes a length-prefixed byte block. The length is bounded by
// maxBlockLen so both sides agree on its bit width without a config
// round-trip; callers needing a different ceiling should not use BlockMessage.
const maxBlockLen = 64

func (b *BlockMessage) Serialize(stream bitstream.Stream) error {
	n := len(b.Data)
	if err := stream.WriteInt(n, 0, maxBlockLen); err != nil {
		return err
	}
	return stream.WriteBytes(b.Data)
}

// Deserialize mirrors Serialize's wire shape for the read path.
func (b *BlockMessage) Deserialize(r *bitstream.Reader) error {
	n, err := r.ReadInt(0, maxBlockLen)
	if err != nil {
		return err
	}
	data, err := r.ReadBytes(n)
	if err != nil {
		return err
	}
	b.Data = data
	return nil
}

var _ Message = (*BlockMessage)(nil)
