package repository

import (
	"context"

	"vendor_chat_portal/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition message stream access
type MessageRepository interface {
	// InsertMessage append one message, timestamp already assigned by the caller
	InsertMessage(ctx context.Context, msg *domain.ChatMessage) error
	// FindRecent the latest `limit` messages of a room in ascending
	// timestamp order
	FindRecent(ctx context.Context, roomID string, limit int64) ([]domain.ChatMessage, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository on the chat_messages collection
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("chat_messages"),
	}
}

func (r *messageRepository) InsertMessage(ctx context.Context, msg *domain.ChatMessage) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) FindRecent(ctx context.Context, roomID string, limit int64) ([]domain.ChatMessage, error) {
	// fetch newest first to apply the cap, then reverse to chronological order
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
