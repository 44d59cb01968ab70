// Package ws streams rendered frames to browser clients so the simulator
// can be watched without hardware. It is never on the panel path.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// State holds the latest frame and the connected clients.
type State struct {
	mu      sync.RWMutex
	w, h    int
	gap     int
	frameID uint64
	start   time.Time
	pix     []byte
	clients map[*websocket.Conn]bool
}

// NewState returns a State for w x h RGB565 tiles with the given mosaic gap.
func NewState(w, h, gap int) *State {
	return &State{
		w:       w,
		h:       h,
		gap:     gap,
		start:   time.Now(),
		pix:     make([]byte, 2*w*h),
		clients: map[*websocket.Conn]bool{},
	}
}

// Publish stores a copy of the frame and broadcasts it to all clients.
func (s *State) Publish(pix []byte) {
	s.mu.Lock()
	copy(s.pix, pix)
	s.frameID++
	buf := append([]byte{}, s.pix...)
	id := s.frameID
	s.mu.Unlock()

	s.broadcastFrame(id, buf)
}

// HandleFramesWS upgrades the connection and subscribes it to frames.
func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.sendTopology(conn)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports frame progress as JSON.
func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.start).Seconds(),
		"tile_w":   s.w,
		"tile_h":   s.h,
		"gap":      s.gap,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *State) sendTopology(conn *websocket.Conn) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	top := map[string]any{
		"tile":   map[string]int{"w": s.w, "h": s.h},
		"gap":    s.gap,
		"format": "rgb565le",
	}
	b, _ := json.Marshal(top)
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *State) broadcastFrame(id uint64, pix []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		Pix     []byte `json:"pix"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, Pix: pix})
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}
