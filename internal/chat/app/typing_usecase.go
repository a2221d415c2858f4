package app

import (
	"context"
	"time"

	"vendor_chat_portal/internal/chat/domain"
	"vendor_chat_portal/internal/chat/repository"
)

// TypingUseCase maintain the per-room typing slot and push its changes
type TypingUseCase struct {
	typingRepo repository.TypingRepository
	pubSub     repository.PubSub
}

// NewTypingUseCase init typing use case
func NewTypingUseCase(typingRepo repository.TypingRepository, pubSub repository.PubSub) *TypingUseCase {
	return &TypingUseCase{
		typingRepo: typingRepo,
		pubSub:     pubSub,
	}
}

// SetTyping upsert the room's typing slot and notify the room. The slot is
// advisory UI state only, so the notification is sent even if a concurrent
// writer overwrote the slot in between.
func (uc *TypingUseCase) SetTyping(ctx context.Context, roomID, userID, userName string, isTyping bool) error {
	status := &domain.TypingStatus{
		RoomID:    roomID,
		UserID:    userID,
		UserName:  userName,
		IsTyping:  isTyping,
		Timestamp: time.Now().UnixMilli(),
	}

	if err := uc.typingRepo.Upsert(ctx, status); err != nil {
		return err
	}

	if uc.pubSub != nil {
		uc.pubSub.Publish(domain.RoomChannel(roomID), domain.WSResponse{
			Action:  string(domain.NotifyTyping),
			Success: true,
			Payload: map[string]interface{}{
				"user_id":   status.UserID,
				"user_name": status.UserName,
				"is_typing": status.IsTyping,
				"timestamp": status.Timestamp,
			},
		})
	}

	return nil
}
