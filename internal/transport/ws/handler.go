package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"classpulse/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin policy is handled upstream
	},
}

// Handler upgrades connections and pipes inbound envelopes into the
// session coordinator.
type Handler struct {
	hub   *Hub
	coord *session.Coordinator
	log   zerolog.Logger
}

func NewHandler(hub *Hub, coord *session.Coordinator, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:   hub,
		coord: coord,
		log:   logger,
	}
}

// Inbound event types
const (
	msgRegisterStudent = "register_student"
	msgGetStudents     = "get_students_list"
	msgKickStudent     = "kick_student"
	msgCreatePoll      = "create_poll"
	msgSubmitAnswer    = "submit_answer"
	msgClosePoll       = "close_poll"
	msgGetPollStatus   = "get_poll_status"
	msgSendMessage     = "send_message"
)

type registerPayload struct {
	Name string `json:"name"`
}

type kickPayload struct {
	TargetConnectionID string `json:"targetConnectionId"`
}

type createPollPayload struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

type answerPayload struct {
	OptionLabel string `json:"optionLabel"`
}

type chatPayload struct {
	Text string `json:"text"`
}

// Serve handles GET /v1/ws. Each upgraded connection gets an opaque
// connection id that identifies it for the lifetime of the socket.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := &Connection{
		ID:   uuid.NewString(),
		Send: make(chan []byte, 256),
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		h.coord.Disconnect(conn.ID)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("conn", conn.ID).Msg("websocket read error")
			}
			return
		}
		h.dispatch(conn.ID, data)
	}
}

// dispatch routes one inbound envelope to the coordinator. Unparseable
// frames and unknown types are dropped; every rejection the coordinator
// produces goes back to the sender as an error event, so nothing here
// can fault the session.
func (h *Handler) dispatch(connID string, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.log.Debug().Err(err).Str("conn", connID).Msg("dropping unparseable frame")
		return
	}

	switch msg.Type {
	case msgRegisterStudent:
		var p registerPayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.coord.Register(connID, p.Name)

	case msgGetStudents:
		h.coord.StudentsList(connID)

	case msgKickStudent:
		var p kickPayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.coord.Kick(connID, p.TargetConnectionID)

	case msgCreatePoll:
		var p createPollPayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.coord.CreatePoll(connID, p.Question, p.Options, p.TimeLimitSeconds)

	case msgSubmitAnswer:
		var p answerPayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.coord.SubmitAnswer(connID, p.OptionLabel)

	case msgClosePoll:
		h.coord.ClosePoll(connID)

	case msgGetPollStatus:
		h.coord.PollStatus(connID)

	case msgSendMessage:
		var p chatPayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.coord.SendChat(connID, p.Text)

	default:
		h.log.Debug().Str("conn", connID).Str("type", msg.Type).Msg("dropping unknown message type")
	}
}

func (h *Handler) decode(connID string, msg Message, dst interface{}) bool {
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		h.log.Debug().Err(err).Str("conn", connID).Str("type", msg.Type).Msg("dropping malformed payload")
		return false
	}
	return true
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
