package domain

// Action websocket request/push action
type Action string

const (
	// EnterRoom websocket action enter_room
	EnterRoom Action = "enter_room"
	// LeaveRoom websocket action leave_room
	LeaveRoom Action = "leave_room"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// SetTyping websocket action set_typing
	SetTyping Action = "set_typing"

	// MessageHistory push: latest messages of a room, ascending
	MessageHistory Action = "message_history"
	// NotifyMessage push: a new message in the entered room
	NotifyMessage Action = "notify_message"
	// NotifyTyping push: the other participant's typing state changed
	NotifyTyping Action = "notify_typing"
	// NotifyRoom push: a room on the vendor dashboard changed
	NotifyRoom Action = "notify_room"
)

// RoomChannel pub/sub channel carrying events for one room
func RoomChannel(roomID string) string {
	return "chat:room:" + roomID
}

// VendorChannel pub/sub channel carrying dashboard refreshes for one vendor
func VendorChannel(vendorID string) string {
	return "chat:vendor:" + vendorID
}

// WSRequest websocket request
type WSRequest struct {
	Action   string `json:"action"`
	RoomID   string `json:"room_id"`
	Content  string `json:"content"`
	IsTyping bool   `json:"is_typing"`
}

// WSResponse websocket response and push envelope
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
