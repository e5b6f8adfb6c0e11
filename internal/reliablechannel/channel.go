// Package reliablechannel implements a reliable, ordered message channel
// over an unreliable datagram transport: it batches application messages
// into byte-budgeted packets, tracks which messages rode which packet,
// retires messages on transport acks, and delivers messages to the
// receiver strictly in enqueue order.
//
// The channel is driven from a single owner goroutine per tick:
// Update, then some combination of GetData, ProcessData, ProcessAck,
// ReceiveMessage. It performs no locking and blocks on nothing — the
// caller's concurrency, if any, lives entirely outside this package.
package reliablechannel

import (
	"errors"
	"fmt"
	"time"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/bitstream"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/message"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/optional"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/seqnum"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/slidingwindow"
)

// ErrSendQueueOverflow is returned by SendMessage when CanSendMessage
// would have reported false — the caller skipped or ignored the check.
var ErrSendQueueOverflow = errors.New("reliablechannel: send queue overflow")

// ErrEarlyMessage is returned by ProcessData when a batch carried a
// message id beyond the receive window. Indicates the peer's send window
// outran what this receiver can buffer; should be impossible if both
// sides share config. The owner should tear the connection down.
var ErrEarlyMessage = errors.New("reliablechannel: early message beyond receive window")

// Counters tracks the channel's lifetime statistics.
type Counters struct {
	MessagesSent           uint64
	MessagesWritten        uint64
	MessagesRead           uint64
	MessagesReceived       uint64
	MessagesDiscardedLate  uint64
	MessagesDiscardedEarly uint64
}

type sendSlot struct {
	id           uint16
	msg          message.Message
	measuredBits int
	timeLastSent time.Time
	everSent     bool
}

func (s *sendSlot) Sequence() uint16 { return s.id }

type sentPacketEntry struct {
	seq        uint16
	acked      bool
	timeSent   time.Time
	messageIDs []uint16
}

func (p *sentPacketEntry) Sequence() uint16 { return p.seq }

type recvSlot struct {
	id           uint16
	msg          message.Message
	timeReceived time.Time
}

func (r *recvSlot) Sequence() uint16 { return r.id }

// Channel is the reliable message channel state machine.
type Channel struct {
	cfg *Config

	sendQueue    *slidingwindow.Window[*sendSlot]
	sentPackets  *slidingwindow.Window[*sentPacketEntry]
	receiveQueue *slidingwindow.Window[*recvSlot]

	nextSendID    uint16
	nextReceiveID uint16

	now time.Time

	counters Counters
}

// NewChannel constructs a Channel from cfg. cfg.MessageFactory() must be
// non-nil.
func NewChannel(cfg *Config) (*Channel, error) {
	if cfg.MessageFactory() == nil {
		return nil, errors.New("reliablechannel: Config requires WithMessageFactory")
	}
	return &Channel{
		cfg:          cfg,
		sendQueue:    slidingwindow.New[*sendSlot](cfg.SendQueueSize()),
		sentPackets:  slidingwindow.New[*sentPacketEntry](cfg.SentPacketsSize()),
		receiveQueue: slidingwindow.New[*recvSlot](cfg.ReceiveQueueSize()),
	}, nil
}

// Update stores the monotonic time subsequent calls will see as "now".
func (c *Channel) Update(now time.Time) {
	c.now = now
}

// Counters returns a snapshot of the channel's lifetime statistics.
func (c *Channel) Counters() Counters {
	return c.counters
}

// CanSendMessage reports whether the send-queue slot for the next message
// id is available.
func (c *Channel) CanSendMessage() bool {
	return c.sendQueue.HasSlotAvailable(c.nextSendID)
}

// SendMessage assigns the next send id to msg, enqueues it, and
// pre-measures its serialized size. Returns ErrSendQueueOverflow if
// CanSendMessage() is false.
func (c *Channel) SendMessage(msg message.Message) error {
	if !c.CanSendMessage() {
		c.cfg.Logger().Warnf("reliablechannel: send queue full at id %d, dropping message", c.nextSendID)
		return ErrSendQueueOverflow
	}
	id := c.nextSendID
	msg.SetID(id)

	bits, err := MeasureMessage(msg, c.cfg.MessageFactory().MaxType())
	if err != nil {
		return fmt.Errorf("reliablechannel: measure message: %w", err)
	}

	slot := &sendSlot{
		id:           id,
		msg:          msg,
		measuredBits: bits,
		timeLastSent: time.Time{},
	}
	if !c.sendQueue.Insert(slot) {
		// CanSendMessage just said this would succeed; a concurrent caller
		// from outside the single-owner model would be a programming error.
		return ErrSendQueueOverflow
	}

	c.counters.MessagesSent++
	c.nextSendID++
	return nil
}

// SendBlock wraps data, which must not exceed MaxSmallBlockSize, in a
// BlockMessage and sends it like any other message.
func (c *Channel) SendBlock(data []byte) error {
	if len(data) > c.cfg.MaxSmallBlockSize() {
		return fmt.Errorf("reliablechannel: block of %d bytes exceeds maxSmallBlockSize %d", len(data), c.cfg.MaxSmallBlockSize())
	}
	return c.SendMessage(message.NewBlockMessage(data))
}

// ReceiveMessage returns the next in-order message, or nil if the slot for
// the current receive id has not yet arrived.
func (c *Channel) ReceiveMessage() message.Message {
	slot, ok := c.receiveQueue.Find(c.nextReceiveID)
	if !ok {
		return nil
	}
	c.receiveQueue.Remove(c.nextReceiveID)
	c.counters.MessagesReceived++
	c.nextReceiveID++
	return slot.msg
}

// GetData assembles the outbound batch for packet sequence pktSeq, bounded
// by packetBudget bytes, and returns its encoded wire bytes. Returns
// (nil, false) if no message is eligible this tick. packetBudget is a
// per-call parameter (not a Config field) so callers can adapt it
// dynamically as path MTU or congestion state changes; see DESIGN.md.
func (c *Channel) GetData(pktSeq uint16, packetBudget int) ([]byte, bool, error) {
	oldestValue := c.findOldestLiveMessageID()
	if oldestValue.IsNone() {
		return nil, false, nil
	}
	oldest := oldestValue.Unwrap()

	availableBits := packetBudget * 8
	maxPerPacket := c.cfg.MaxMessagesPerPacket()
	giveUp := c.cfg.GiveUpBits()
	resendRate := c.cfg.ResendRate()

	selected := make([]uint16, 0, maxPerPacket)
	msgs := make([]message.Message, 0, maxPerPacket)

	// Step 2: gather eligible messages starting at oldest, walking forward
	// up to receiveQueueSize steps — the source's bound, faithfully
	// reproduced; see DESIGN.md.
	steps := c.cfg.ReceiveQueueSize()
	id := oldest
	for i := 0; i < steps; i++ {
		if len(selected) >= maxPerPacket {
			break
		}
		if availableBits < giveUp {
			break
		}

		slot, ok := c.sendQueue.Find(id)
		if ok {
			eligible := !slot.everSent || !c.now.Before(slot.timeLastSent.Add(resendRate))
			if eligible && availableBits-slot.measuredBits >= 0 {
				selected = append(selected, id)
				msgs = append(msgs, slot.msg)
				availableBits -= slot.measuredBits
				slot.timeLastSent = c.now
				slot.everSent = true
			}
		}
		id++
	}

	if len(selected) == 0 {
		return nil, false, nil
	}

	// Step 4: record the batch against the sent-packets window, and stamp
	// timeLastSent on every selected slot, before encoding. A well-formed
	// Message never fails to encode what it just measured, so this ordering
	// is safe in practice; an encode error below still leaves the batch
	// recorded and the slots stamped as sent even though no bytes went out,
	// which would wrongly suppress their next resend window.
	c.sentPackets.InsertFast(pktSeq, func(seq uint16) *sentPacketEntry {
		return &sentPacketEntry{
			seq:        seq,
			acked:      false,
			timeSent:   c.now,
			messageIDs: selected,
		}
	})

	// Step 5/6: build and count.
	w := bitstream.NewWriter()
	if err := EncodePacket(w, msgs, maxPerPacket, c.cfg.MessageFactory().MaxType()); err != nil {
		return nil, false, fmt.Errorf("reliablechannel: encode packet: %w", err)
	}
	c.counters.MessagesWritten += uint64(len(selected))
	return w.Bytes(), true, nil
}

// findOldestLiveMessageID scans the sendQueueSize ids ending at
// nextSendID-1 and returns the least (wrap-aware) id among valid slots,
// or None if the send queue is empty.
func (c *Channel) findOldestLiveMessageID() optional.Value[uint16] {
	size := c.cfg.SendQueueSize()
	best := optional.None[uint16]()
	id := c.nextSendID - uint16(size)
	for i := 0; i < size; i++ {
		if c.sendQueue.Valid(id) {
			if best.IsNone() || seqnum.LessThan(id, best.Unwrap()) {
				best = optional.Some(id)
			}
		}
		id++
	}
	return best
}

// ProcessData decodes a batch and classifies each message against the
// current receive window. pktSeq is accepted but unused here: it matters
// only for acks, which the transport handles independently of this call.
func (c *Channel) ProcessData(pktSeq uint16, data []byte) error {
	_ = pktSeq
	r := bitstream.NewReader(data)
	msgs, decodeErr := DecodePacket(r, c.cfg.MessageFactory(), c.cfg.MaxMessagesPerPacket())

	sawEarly := false
	windowMax := c.nextReceiveID + uint16(c.cfg.ReceiveQueueSize()) - 1

	for _, m := range msgs {
		id := m.ID()
		c.counters.MessagesRead++

		switch {
		case seqnum.LessThan(id, c.nextReceiveID):
			c.counters.MessagesDiscardedLate++
		case seqnum.GreaterThan(id, windowMax):
			c.counters.MessagesDiscardedEarly++
			sawEarly = true
		default:
			c.receiveQueue.Insert(&recvSlot{id: id, msg: m, timeReceived: c.now})
		}
	}

	if sawEarly {
		c.cfg.Logger().Warnf("reliablechannel: packet %d carried a message beyond the receive window", pktSeq)
		return ErrEarlyMessage
	}
	if decodeErr != nil {
		c.cfg.Logger().Errorf("reliablechannel: packet %d failed to decode: %v", pktSeq, decodeErr)
		return fmt.Errorf("reliablechannel: decode packet: %w", decodeErr)
	}
	return nil
}

// ProcessAck retires every message the packet pktSeq carried, if that
// packet's record is still present and not already acked. Idempotent:
// repeated calls after the first have no further effect.
func (c *Channel) ProcessAck(pktSeq uint16) {
	entry, ok := c.sentPackets.Find(pktSeq)
	if !ok || entry.acked {
		return
	}
	entry.acked = true
	for _, id := range entry.messageIDs {
		if slot, ok := c.sendQueue.Find(id); ok && slot.id == id {
			c.sendQueue.Remove(id)
		}
	}
}
