// Package channeltest provides scripted scenario helpers for exercising
// reliablechannel without a real application protocol: a trivial
// fixed-payload message/factory pair and a fake, explicitly-advanced
// clock standing in for the owner loop's injected monotonic time.
package channeltest

import (
	"fmt"
	"time"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/bitstream"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/message"
)

// FixedMessage is a message whose payload is a fixed number of bits,
// encoded as a zero-padded integer. It exists purely to let tests control
// a message's measured size precisely, e.g. "messages of 40 serialized
// bits each".
type FixedMessage struct {
	id   uint16
	bits int
	Data uint32
}

// NewFixedMessage returns a message that serializes to exactly bits bits.
func NewFixedMessage(bits int, data uint32) *FixedMessage {
	return &FixedMessage{bits: bits, Data: data}
}

func (m *FixedMessage) Type() uint8     { return 0 }
func (m *FixedMessage) ID() uint16      { return m.id }
func (m *FixedMessage) SetID(id uint16) { m.id = id }

func (m *FixedMessage) Serialize(stream bitstream.Stream) error {
	if m.bits > 32 {
		// split across two writes: zero padding above the 32-bit Data, then Data.
		if err := stream.WriteBits(0, m.bits-32); err != nil {
			return err
		}
		return stream.WriteBits(m.Data, 32)
	}
	return stream.WriteBits(m.Data, m.bits)
}

func (m *FixedMessage) Deserialize(r *bitstream.Reader) error {
	bits := m.bits
	if bits > 32 {
		if _, err := r.ReadBits(bits - 32); err != nil {
			return err
		}
		bits = 32
	}
	v, err := r.ReadBits(bits)
	if err != nil {
		return err
	}
	m.Data = v
	return nil
}

var _ message.Message = (*FixedMessage)(nil)

// FixedFactory constructs FixedMessage values of a single fixed bit width.
// MaxType is always 0: this harness exercises one message shape at a time.
type FixedFactory struct {
	Bits int
}

func (f *FixedFactory) MaxType() uint8 { return 0 }

func (f *FixedFactory) Create(t uint8) (message.Message, error) {
	if t != 0 {
		return nil, &message.ErrUnknownType{Type: t}
	}
	return &FixedMessage{bits: f.Bits}, nil
}

var _ message.Factory = (*FixedFactory)(nil)

// Clock is an explicitly advanced stand-in for the monotonic time source
// the owner loop feeds into Channel.Update, letting tests script exact
// resend timing deterministically.
type Clock struct {
	t time.Time
}

// NewClock returns a Clock starting at the given offset from the zero
// time, expressed in seconds.
func NewClock(startSeconds float64) *Clock {
	return &Clock{t: time.Time{}.Add(time.Duration(startSeconds * float64(time.Second)))}
}

// At returns the clock's current value.
func (c *Clock) At() time.Time { return c.t }

// SetSeconds moves the clock to the given offset from the zero time.
func (c *Clock) SetSeconds(seconds float64) {
	c.t = time.Time{}.Add(time.Duration(seconds * float64(time.Second)))
}

// RecordingLogger implements message.Logger, capturing every call for
// assertions instead of printing — useful when a test wants to confirm a
// warning was (or was not) logged.
type RecordingLogger struct {
	Lines []string
}

// NewRecordingLogger returns a Logger that appends formatted lines instead
// of writing them anywhere.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Debug(msg string)                  { l.Lines = append(l.Lines, "DEBUG: "+msg) }
func (l *RecordingLogger) Debugf(f string, v ...interface{}) { l.Lines = append(l.Lines, "DEBUG: "+fmt.Sprintf(f, v...)) }
func (l *RecordingLogger) Info(msg string)                   { l.Lines = append(l.Lines, "INFO: "+msg) }
func (l *RecordingLogger) Infof(f string, v ...interface{})  { l.Lines = append(l.Lines, "INFO: "+fmt.Sprintf(f, v...)) }
func (l *RecordingLogger) Warn(msg string)                   { l.Lines = append(l.Lines, "WARN: "+msg) }
func (l *RecordingLogger) Warnf(f string, v ...interface{})  { l.Lines = append(l.Lines, "WARN: "+fmt.Sprintf(f, v...)) }
func (l *RecordingLogger) Error(msg string)                  { l.Lines = append(l.Lines, "ERROR: "+msg) }
func (l *RecordingLogger) Errorf(f string, v ...interface{}) { l.Lines = append(l.Lines, "ERROR: "+fmt.Sprintf(f, v...)) }

var _ message.Logger = (*RecordingLogger)(nil)
