package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductsize/calculator"
	"ductsize/model"
)

const singleDuct = `{
	"title": "ws",
	"fan_pressure": 1.0,
	"air_density": 0.075,
	"roughness": 0.0003,
	"rounding": "none",
	"fittings": [
		{"id": 1, "type": "air_handling_unit"},
		{"id": 2, "type": "duct", "up": "1", "length": 50},
		{"id": 3, "type": "diffuser", "up": "2", "flow": 800}
	]
}`

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	s := NewServer("", websocket.Upgrader{}, calculator.DefaultConfig())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req model.Msg) model.Msg {
	t.Helper()
	require.NoError(t, conn.WriteJSON(&req))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	var reply model.Msg
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestHub_Session(t *testing.T) {
	conn := dial(t)

	reply := roundTrip(t, conn, model.Msg{Type: TypeNetwork, Content: singleDuct})
	assert.Equal(t, TypeNetworkSet, reply.Type)
	assert.Equal(t, "3 fittings", reply.Content)

	reply = roundTrip(t, conn, model.Msg{Type: TypeStart})
	require.Equal(t, TypeResult, reply.Type, reply.Content)
	var n model.Network
	require.NoError(t, json.Unmarshal([]byte(reply.Content), &n))
	require.Len(t, n.Fittings, 3)
	duct := n.Fittings[1]
	assert.Equal(t, 800.0, duct.Flow)
	assert.Greater(t, duct.Size, 0.0)
	assert.InDelta(t, 1.0, duct.PressureDrop, 1e-9)
	assert.Equal(t, 50.0, n.Fittings[2].FanDistance)

	// 同一管网可以重复计算
	again := roundTrip(t, conn, model.Msg{Type: TypeStart})
	assert.Equal(t, reply, again)

	reply = roundTrip(t, conn, model.Msg{Type: TypeStop})
	assert.Equal(t, model.Msg{Type: TypeStopped, Content: "stopped"}, reply)
}

func TestHub_Errors(t *testing.T) {
	conn := dial(t)

	reply := roundTrip(t, conn, model.Msg{Type: TypeStart})
	assert.Equal(t, TypeError, reply.Type)

	reply = roundTrip(t, conn, model.Msg{Type: "env"})
	assert.Equal(t, TypeError, reply.Type)
	assert.Contains(t, reply.Content, "no such type")

	reply = roundTrip(t, conn, model.Msg{Type: TypeNetwork, Content: "{"})
	assert.Equal(t, TypeError, reply.Type)

	broken := strings.Replace(singleDuct, `"up": "2"`, `"up": "9"`, 1)
	reply = roundTrip(t, conn, model.Msg{Type: TypeNetwork, Content: broken})
	require.Equal(t, TypeNetworkSet, reply.Type)
	reply = roundTrip(t, conn, model.Msg{Type: TypeStart})
	assert.Equal(t, TypeError, reply.Type)
	assert.Contains(t, reply.Content, model.ErrUnresolvedReference.Error())
}
