package repository

import (
	"context"

	"vendor_chat_portal/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TypingRepository definition the per-room typing slot
type TypingRepository interface {
	Upsert(ctx context.Context, status *domain.TypingStatus) error
	Find(ctx context.Context, roomID string) (*domain.TypingStatus, error)
}

type typingRepository struct {
	coll *mongo.Collection
}

// NewMongoTypingRepository create a TypingRepository on the chat_typing collection
func NewMongoTypingRepository(db *mongo.Database) TypingRepository {
	return &typingRepository{
		coll: db.Collection("chat_typing"),
	}
}

// Upsert write the room's single typing slot, last writer wins
func (r *typingRepository) Upsert(ctx context.Context, status *domain.TypingStatus) error {
	filter := bson.M{"_id": status.RoomID}
	update := bson.M{"$set": bson.M{
		"user_id":   status.UserID,
		"user_name": status.UserName,
		"is_typing": status.IsTyping,
		"timestamp": status.Timestamp,
	}}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Find read the slot, nil when no one has ever typed in the room
func (r *typingRepository) Find(ctx context.Context, roomID string) (*domain.TypingStatus, error) {
	var status domain.TypingStatus
	err := r.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&status)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}
