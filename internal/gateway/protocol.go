package gateway

import "encoding/json"

// Inbound message types.
const (
	MsgRoomCreate  = "room.create"
	MsgRoomJoin    = "room.join"
	MsgRoomLeave   = "room.leave"
	MsgPlayerReady = "player.ready"
	MsgGameStart   = "game.start"
	MsgGameAnswer  = "game.answer"
	MsgPing        = "ping"
)

// Outbound types that are not room events.
const (
	EventError = "error"
	EventPong  = "pong"
)

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type createRoomData struct {
	Capacity  int  `json:"capacity"`
	IsPrivate bool `json:"isPrivate"`
}

type joinRoomData struct {
	RoomID string `json:"roomId"`
}

type answerData struct {
	Choice         string `json:"choice"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
}

// ErrorData is sent to the originating connection when an inbound message
// fails. Other connections see nothing.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}
