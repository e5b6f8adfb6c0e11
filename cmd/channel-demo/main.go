// Command channel-demo wires a reliablechannel.Channel over a real UDP
// socket, demonstrating the single-owner-loop concurrency model: all
// reads and writes from the channel happen on one goroutine, with I/O
// pushed to the edges via a reader goroutine and a ticker.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"time"

	apexlog "github.com/apex/log"
	apexcli "github.com/apex/log/handlers/cli"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/channeltest"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/message"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/reliablechannel"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/workers"
)

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:9400", "local UDP address to bind")
	peerAddr := flag.String("peer", "", "remote UDP address to send to (optional)")
	flag.Parse()

	apexlog.SetHandler(apexcli.Default)

	sessionID := uuid.New()
	logger := apexlog.Log.WithField("session", sessionID.String())

	conn, err := net.ListenPacket("udp", *listenAddr)
	if err != nil {
		logger.WithError(err).Fatal("listen failed")
	}
	defer conn.Close()

	var peer net.Addr
	if *peerAddr != "" {
		peer, err = net.ResolveUDPAddr("udp", *peerAddr)
		if err != nil {
			logger.WithError(err).Fatal("resolve peer failed")
		}
	}

	factory := &channeltest.FixedFactory{Bits: 32}
	cfg := reliablechannel.NewConfig(
		reliablechannel.WithMessageFactory(factory),
		reliablechannel.WithLogger(message.DefaultLogger),
	)
	ch, err := reliablechannel.NewChannel(cfg)
	if err != nil {
		logger.WithError(err).Fatal("channel construction failed")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	mgr := workers.NewManager()
	transport := newUDPTransport(conn, peer, logger)

	eg, egCtx := errgroup.WithContext(ctx)

	mgr.StartWorker(func() {
		defer mgr.OnWorkerDone()
		transport.readLoop(egCtx, mgr)
	})
	eg.Go(func() error { return ownerLoop(egCtx, ch, transport, logger, mgr) })

	go func() {
		<-ctx.Done()
		mgr.StartShutdown()
	}()

	if err := eg.Wait(); err != nil && err != context.Canceled {
		logger.WithError(err).Error("demo exited with error")
	}
	mgr.WaitWorkersShutdown()
}

// ownerLoop is the single goroutine permitted to touch ch's state,
// matching the channel's single-threaded cooperative concurrency model. It
// reads inbound datagrams off transport.inbound and drives the
// update/get_data/process_data/process_ack/receive_message sequence on a
// fixed tick.
func ownerLoop(ctx context.Context, ch *reliablechannel.Channel, t *udpTransport, logger apexlog.Interface, mgr *workers.Manager) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var nextPktSeq uint16

	for {
		select {
		case <-ctx.Done():
			mgr.StartShutdown()
			return ctx.Err()

		case <-mgr.ShouldShutdown():
			return nil

		case in := <-t.inbound:
			ch.Update(time.Now())
			if in.isAck {
				ch.ProcessAck(in.seq)
				continue
			}
			if err := ch.ProcessData(in.seq, in.payload); err != nil {
				logger.WithError(err).Warn("process_data failed")
			}
			if err := t.sendAck(in.seq); err != nil {
				logger.WithError(err).Warn("send ack failed")
			}
			for {
				m := ch.ReceiveMessage()
				if m == nil {
					break
				}
				logger.Infof("delivered message id=%d", m.ID())
			}

		case <-ticker.C:
			ch.Update(time.Now())
			data, ok, err := ch.GetData(nextPktSeq, 128)
			if err != nil {
				logger.WithError(err).Warn("get_data failed")
				continue
			}
			if !ok {
				continue
			}
			if err := t.sendData(nextPktSeq, data); err != nil {
				logger.WithError(err).Warn("send data failed")
				continue
			}
			nextPktSeq++
		}
	}
}
