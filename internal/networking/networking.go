// Package networking owns the engine's UDP send and receive paths. The
// writer is an event loop like every other subsystem; the reader is
// different because it blocks in a socket wait, so pausing it works
// through a condition variable plus short read deadlines instead of
// pushed closures.
package networking

import (
	"net"
	"sync"
	"time"

	"emberline/internal/dispatch"
	"emberline/internal/errs"
	"emberline/internal/logging"
)

// readDeadline bounds each blocking read so the reader re-checks its
// pause flag even with no traffic.
const readDeadline = 250 * time.Millisecond

// Handler receives inbound packets. Called on the reader goroutine;
// implementations push work to their own loop.
type Handler func(data []byte, addr net.Addr)

// Networking is the network subsystem.
type Networking struct {
	writeLoop *dispatch.EventLoop
	log       *logging.Logger

	conn    net.PacketConn
	handler Handler

	mu     sync.Mutex
	cond   *sync.Cond
	paused bool
	closed bool
	done   chan struct{}
}

// New creates the network subsystem listening on addr ("" or ":0" for
// an ephemeral port).
func New(addr string, handler Handler) (*Networking, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "opening udp socket")
	}
	n := &Networking{
		writeLoop: dispatch.NewEventLoop("network-write"),
		log:       logging.For("networking"),
		conn:      conn,
		handler:   handler,
		done:      make(chan struct{}),
	}
	n.cond = sync.NewCond(&n.mu)
	return n, nil
}

// WriteLoop returns the network-write event loop.
func (n *Networking) WriteLoop() *dispatch.EventLoop { return n.writeLoop }

// LocalAddr returns the bound socket address.
func (n *Networking) LocalAddr() net.Addr { return n.conn.LocalAddr() }

// Start launches the reader goroutine. The write loop is started by
// the app with the other loops.
func (n *Networking) Start() {
	go n.readLoop()
}

func (n *Networking) readLoop() {
	defer close(n.done)
	buf := make([]byte, 64*1024)
	for {
		n.mu.Lock()
		for n.paused && !n.closed {
			n.cond.Wait()
		}
		if n.closed {
			n.mu.Unlock()
			return
		}
		n.mu.Unlock()

		n.conn.SetReadDeadline(time.Now().Add(readDeadline))
		cnt, addr, err := n.conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			n.mu.Lock()
			closed := n.closed
			n.mu.Unlock()
			if !closed {
				n.log.Warn("socket read failed", "err", err)
			}
			continue
		}
		if n.handler != nil {
			pkt := make([]byte, cnt)
			copy(pkt, buf[:cnt])
			n.handler(pkt, addr)
		}
	}
}

// SendTo queues data for delivery to addr via the write loop.
func (n *Networking) SendTo(data []byte, addr net.Addr) {
	n.writeLoop.PushCall(func() {
		if _, err := n.conn.WriteTo(data, addr); err != nil {
			n.log.Warn("socket write failed", "addr", addr, "err", err)
		}
	})
}

// OnAppPause parks the reader. The reader finishes any in-flight read
// (bounded by the deadline) and then waits on the condition variable.
func (n *Networking) OnAppPause() {
	n.mu.Lock()
	n.paused = true
	n.mu.Unlock()
	n.writeLoop.Pause()
}

// OnAppResume wakes the reader.
func (n *Networking) OnAppResume() {
	n.mu.Lock()
	n.paused = false
	n.mu.Unlock()
	n.cond.Broadcast()
	n.writeLoop.Resume()
}

// OnAppShutdown stops the reader and closes the socket.
func (n *Networking) OnAppShutdown() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	n.cond.Broadcast()
	n.conn.Close()
	<-n.done
}
