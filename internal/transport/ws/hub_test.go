package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvMessage(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data := <-conn.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func testConn(id string) *Connection {
	return &Connection{ID: id, Send: make(chan []byte, 16)}
}

func TestHubBroadcastToAll(t *testing.T) {
	h := NewHub(zerolog.Nop())

	c1 := testConn("conn-1")
	c2 := testConn("conn-2")
	h.Register(c1)
	h.Register(c2)

	h.BroadcastToAll("students_update", map[string]int{"count": 2})

	for _, conn := range []*Connection{c1, c2} {
		msg := recvMessage(t, conn)
		assert.Equal(t, "students_update", msg.Type)

		var payload map[string]int
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, 2, payload["count"])
	}
}

func TestHubSendToSingleConnection(t *testing.T) {
	h := NewHub(zerolog.Nop())

	c1 := testConn("conn-1")
	c2 := testConn("conn-2")
	h.Register(c1)
	h.Register(c2)

	h.SendTo("conn-1", "kicked", struct{}{})

	msg := recvMessage(t, c1)
	assert.Equal(t, "kicked", msg.Type)

	select {
	case data := <-c2.Send:
		t.Fatalf("unexpected message for conn-2: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSendToUnknownConnectionIsDropped(t *testing.T) {
	h := NewHub(zerolog.Nop())
	h.SendTo("conn-9", "kicked", struct{}{})
	// Nothing to assert beyond not blocking or panicking
}

func TestHubPerRecipientOrdering(t *testing.T) {
	h := NewHub(zerolog.Nop())

	conn := testConn("conn-1")
	h.Register(conn)

	for i := 0; i < 10; i++ {
		h.BroadcastToAll("seq", i)
	}

	for i := 0; i < 10; i++ {
		msg := recvMessage(t, conn)
		var got int
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, i, got)
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub(zerolog.Nop())

	conn := testConn("conn-1")
	h.Register(conn)
	h.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}
