package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	rt "github.com/inneratlas/backend/internal/realtime"
)

// Handler upgrades HTTP requests to realtime channels. A single well-known
// endpoint serves every session; scoping happens through the join envelope.
type Handler struct {
	manager  *rt.Manager
	upgrader websocket.Upgrader
}

// New creates the realtime handler.
func New(manager *rt.Manager) *Handler {
	return &Handler{
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the realtime endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/realtime", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[realtime] upgrade failed: %v", err)
		return
	}

	peer := rt.NewConnPeer(conn)

	conn.SetReadDeadline(time.Now().Add(rt.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(rt.PongWait))
		return nil
	})

	log.Printf("[realtime] channel attached from %s", r.RemoteAddr)
	h.readLoop(r, conn, peer)
}

// readLoop consumes inbound frames until the connection dies. Malformed JSON
// is answered per envelope and never tears down the channel; only transport
// errors do, and those funnel into the manager's implicit-leave cleanup.
func (h *Handler) readLoop(r *http.Request, conn *websocket.Conn, peer *rt.ConnPeer) {
	defer func() {
		h.manager.HandleClose(peer)
		peer.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[realtime] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(rt.PongWait))

		var env rt.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			peer.Send(map[string]string{"type": rt.EventError, "message": "malformed envelope"})
			continue
		}

		h.manager.HandleEnvelope(r.Context(), peer, env)
	}
}
