package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	s := NewState(64, 64, 3)
	s.Publish(make([]byte, 2*64*64))

	rec := httptest.NewRecorder()
	s.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp["frame_id"])
	assert.EqualValues(t, 64, resp["tile_w"])
	assert.EqualValues(t, 3, resp["gap"])
}

func TestFramesWS(t *testing.T) {
	s := NewState(2, 2, 3)

	srv := httptest.NewServer(http.HandlerFunc(s.HandleFramesWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	// First message is the topology.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	assert.NoError(t, err)
	var top map[string]any
	assert.NoError(t, json.Unmarshal(msg, &top))
	assert.Equal(t, "rgb565le", top["format"])

	// Then frames as they are published.
	s.Publish([]byte{0x5F, 0x2A, 0, 0, 0, 0, 0, 0})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err = conn.ReadMessage()
	assert.NoError(t, err)

	var fr struct {
		FrameID uint64 `json:"frame_id"`
		Pix     []byte `json:"pix"`
	}
	assert.NoError(t, json.Unmarshal(msg, &fr))
	assert.EqualValues(t, 1, fr.FrameID)
	assert.Equal(t, []byte{0x5F, 0x2A, 0, 0, 0, 0, 0, 0}, fr.Pix)
}
