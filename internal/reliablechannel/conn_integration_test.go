package reliablechannel_test

import (
	"net"
	"testing"
	"time"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/channeltest"
)

// TestOverInMemoryConn pipes two channel instances over an in-memory
// net.Conn pair from net.Pipe, exercising GetData/ProcessData/ProcessAck
// against a real connection type rather than a hand-rolled fake, the way a
// transport-integration test should. net.Pipe is synchronous (unbuffered),
// so the write side runs on its own goroutine while the read happens on
// the test goroutine.
func TestOverInMemoryConn(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	sender := newTestChannel(t)
	receiver := newTestChannel(t)
	now := time.Now()
	sender.Update(now)
	receiver.Update(now)

	for i := 0; i < 5; i++ {
		if err := sender.SendMessage(channeltest.NewFixedMessage(40, uint32(i))); err != nil {
			t.Fatal(err)
		}
	}

	data, ok, err := sender.GetData(0, 128)
	if err != nil || !ok {
		t.Fatalf("GetData: ok=%v err=%v", ok, err)
	}

	writeErr := make(chan error, 1)
	go func() {
		_, err := c1.Write(data)
		writeErr <- err
	}()

	buf := make([]byte, len(data))
	n, err := c2.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := <-writeErr; err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := receiver.ProcessData(0, buf[:n]); err != nil {
		t.Fatalf("ProcessData: %v", err)
	}

	for i := 0; i < 5; i++ {
		if m := receiver.ReceiveMessage(); m == nil {
			t.Fatalf("expected message %d delivered over the in-memory conn", i)
		}
	}
}
