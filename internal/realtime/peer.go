package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// PongWait bounds how long a silent connection is kept; pings go out
	// slightly more often than the deadline.
	PongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// ConnPeer adapts a gorilla websocket connection to the Peer interface. All
// writes funnel through a buffered channel drained by a single write pump, so
// broadcasts from the manager never interleave frames.
type ConnPeer struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewConnPeer wraps conn and starts its write pump. The caller keeps
// responsibility for the read side.
func NewConnPeer(conn *websocket.Conn) *ConnPeer {
	p := &ConnPeer{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	go p.writePump()
	return p
}

// Send marshals v and enqueues it. A peer whose buffer is full is considered
// dead and is disconnected rather than blocking the session.
func (p *ConnPeer) Send(v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[realtime] marshal outbound event failed: %v", err)
		return false
	}

	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.send <- b:
		return true
	default:
		log.Printf("[realtime] peer send buffer full, disconnecting")
		p.Close()
		return false
	}
}

// Close shuts down the write pump and the underlying connection. Safe to call
// more than once and from any goroutine.
func (p *ConnPeer) Close() {
	p.once.Do(func() {
		close(p.done)
	})
}

func (p *ConnPeer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case b := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				p.Close()
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.Close()
				return
			}
		case <-p.done:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
