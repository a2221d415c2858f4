package domain

import "fmt"

// ChatStartedMessage initial last-message text written when a room is created
const ChatStartedMessage = "Chat started"

// ChatRoom one conversation container per (vendor, customer) pair.
// Vendor and customer metadata is denormalized onto the room so the
// dashboard list needs no joins.
type ChatRoom struct {
	ID              string `bson:"_id,omitempty" json:"id"`
	VendorID        string `bson:"vendor_id" json:"vendor_id"`
	VendorName      string `bson:"vendor_name" json:"vendor_name"`
	VendorEmail     string `bson:"vendor_email" json:"vendor_email"`
	CustomerID      string `bson:"customer_id" json:"customer_id"`
	CustomerName    string `bson:"customer_name" json:"customer_name"`
	CreatedAt       int64  `bson:"created_at" json:"created_at"`
	LastMessage     string `bson:"last_message" json:"last_message"`
	LastMessageTime int64  `bson:"last_message_time" json:"last_message_time"`
	UnreadCount     int    `bson:"unread_count" json:"unread_count"`
}

// RoomID deterministic room id for a vendor/customer pair
func RoomID(vendorID, customerID string) string {
	return fmt.Sprintf("room_%s_%s", vendorID, customerID)
}

// IsParticipant report whether userID belongs to this room
func (r *ChatRoom) IsParticipant(userID string) bool {
	return r.VendorID == userID || r.CustomerID == userID
}
