package repository

import (
	"context"

	"vendor_chat_portal/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoomRepository definition chat room registry
type RoomRepository interface {
	// EnsureRoom create the room if absent, one atomic upsert keyed on the
	// deterministic room id. Returns true when this call created the room.
	EnsureRoom(ctx context.Context, room *domain.ChatRoom) (bool, error)
	FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error)
	// FindByVendor all rooms for a vendor, last message time descending
	FindByVendor(ctx context.Context, vendorID string) ([]domain.ChatRoom, error)
	// RecordMessageSent update last-message fields and bump the unread count
	// when the sender is the customer, in a single update
	RecordMessageSent(ctx context.Context, roomID, text string, sentAt int64, isVendorSender bool) error
	// ResetUnread zero the unread count if viewerID is the room's vendor and
	// the count is nonzero. Returns true when a reset actually happened.
	ResetUnread(ctx context.Context, roomID, viewerID string) (bool, error)
}

type roomRepository struct {
	roomsColl *mongo.Collection
}

// NewMongoRoomRepository create a RoomRepository on the chat_rooms collection
func NewMongoRoomRepository(db *mongo.Database) RoomRepository {
	return &roomRepository{
		roomsColl: db.Collection("chat_rooms"),
	}
}

func (r *roomRepository) EnsureRoom(ctx context.Context, room *domain.ChatRoom) (bool, error) {
	filter := bson.M{"_id": room.ID}
	update := bson.M{"$setOnInsert": bson.M{
		"vendor_id":         room.VendorID,
		"vendor_name":       room.VendorName,
		"vendor_email":      room.VendorEmail,
		"customer_id":       room.CustomerID,
		"customer_name":     room.CustomerName,
		"created_at":        room.CreatedAt,
		"last_message":      room.LastMessage,
		"last_message_time": room.LastMessageTime,
		"unread_count":      room.UnreadCount,
	}}
	res, err := r.roomsColl.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// FindByID find room by id, nil when absent
func (r *roomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.roomsColl.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindByVendor(ctx context.Context, vendorID string) ([]domain.ChatRoom, error) {
	opts := options.Find().SetSort(bson.M{"last_message_time": -1})
	cur, err := r.roomsColl.Find(ctx, bson.M{"vendor_id": vendorID}, opts)
	if err != nil {
		return nil, err
	}
	var rooms []domain.ChatRoom
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *roomRepository) RecordMessageSent(ctx context.Context, roomID, text string, sentAt int64, isVendorSender bool) error {
	update := bson.M{
		"$set": bson.M{
			"last_message":      text,
			"last_message_time": sentAt,
		},
	}
	if !isVendorSender {
		update["$inc"] = bson.M{"unread_count": 1}
	}
	_, err := r.roomsColl.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	return err
}

func (r *roomRepository) ResetUnread(ctx context.Context, roomID, viewerID string) (bool, error) {
	filter := bson.M{
		"_id":          roomID,
		"vendor_id":    viewerID,
		"unread_count": bson.M{"$gt": 0},
	}
	res, err := r.roomsColl.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"unread_count": 0}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
