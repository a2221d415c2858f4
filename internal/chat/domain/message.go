package domain

import "time"

// HistoryLimit at most this many latest messages are delivered per room
const HistoryLimit = 100

// TypingIdleTimeout typing flag auto-clears after this much keystroke silence
const TypingIdleTimeout = 2 * time.Second

// ChatMessage one chat message, timestamp in unix milliseconds assigned
// by the service clock on append
type ChatMessage struct {
	ID         string `bson:"_id,omitempty" json:"id"`
	RoomID     string `bson:"room_id" json:"room_id"`
	Text       string `bson:"text" json:"text"`
	SenderID   string `bson:"sender_id" json:"sender_id"`
	SenderName string `bson:"sender_name" json:"sender_name"`
	Timestamp  int64  `bson:"timestamp" json:"timestamp"`
}

// TypingStatus the single per-room typing slot. There is one slot, not one
// per participant: when both sides type at once the later write wins and
// the earlier state is lost.
type TypingStatus struct {
	RoomID    string `bson:"_id" json:"room_id"`
	UserID    string `bson:"user_id" json:"user_id"`
	UserName  string `bson:"user_name" json:"user_name"`
	IsTyping  bool   `bson:"is_typing" json:"is_typing"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}
