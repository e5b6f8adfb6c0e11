package main

import (
	"context"
	"encoding/binary"
	"net"

	apexlog "github.com/apex/log"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/workers"
)

// inboundDatagram is what the reader goroutine hands to the owner loop:
// either a data packet (isAck=false, payload is the channel's own wire
// format) or a bare ack (isAck=true, payload empty).
type inboundDatagram struct {
	seq     uint16
	isAck   bool
	payload []byte
}

// udpTransport is the demo's concrete packet transport: a minimal framing
// of 2-byte sequence + 1-byte flag + payload over a single net.PacketConn.
// This framing is a demo convenience; it is not part of the reliable
// channel's own wire format, which is fully self-describing on its own.
type udpTransport struct {
	conn    net.PacketConn
	peer    net.Addr
	logger  apexlog.Interface
	inbound chan inboundDatagram
}

const (
	flagData byte = 0
	flagAck  byte = 1
)

func newUDPTransport(conn net.PacketConn, peer net.Addr, logger apexlog.Interface) *udpTransport {
	return &udpTransport{
		conn:    conn,
		peer:    peer,
		logger:  logger,
		inbound: make(chan inboundDatagram, 64),
	}
}

// readLoop decodes inbound datagrams and forwards them to the owner loop.
// It is the only goroutine that reads from conn, matching the demo's
// edges-do-I/O, owner-does-state-access split.
func (t *udpTransport) readLoop(ctx context.Context, mgr *workers.Manager) {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		case <-mgr.ShouldShutdown():
			return
		default:
		}

		n, addr, err := t.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-mgr.ShouldShutdown():
				return
			default:
			}
			t.logger.WithError(err).Warn("read failed")
			continue
		}
		if t.peer == nil {
			t.peer = addr
		}
		if n < 3 {
			t.logger.Warn("short datagram, dropping")
			continue
		}

		seq := binary.BigEndian.Uint16(buf[0:2])
		flag := buf[2]
		payload := append([]byte(nil), buf[3:n]...)

		dg := inboundDatagram{seq: seq, isAck: flag == flagAck, payload: payload}
		select {
		case t.inbound <- dg:
		case <-ctx.Done():
			return
		case <-mgr.ShouldShutdown():
			return
		}
	}
}

func (t *udpTransport) sendData(seq uint16, payload []byte) error {
	return t.send(seq, flagData, payload)
}

func (t *udpTransport) sendAck(seq uint16) error {
	return t.send(seq, flagAck, nil)
}

func (t *udpTransport) send(seq uint16, flag byte, payload []byte) error {
	if t.peer == nil {
		// no peer known yet (nothing received, none configured); nothing to do.
		return nil
	}
	buf := make([]byte, 3+len(payload))
	binary.BigEndian.PutUint16(buf[0:2], seq)
	buf[2] = flag
	copy(buf[3:], payload)
	_, err := t.conn.WriteTo(buf, t.peer)
	return err
}
