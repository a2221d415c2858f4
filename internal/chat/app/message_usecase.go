package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vendor_chat_portal/internal/chat/domain"
	"vendor_chat_portal/internal/chat/repository"
	errprocess "vendor_chat_portal/pkg/err"
	"vendor_chat_portal/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrRoomNotFound returned when a message targets a room that does not exist
var ErrRoomNotFound = errors.New("room not found")

// EventWriter the subset of kafka.Writer used for the chat event feed
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// SendMessageUseCase append messages, keep room metadata in sync, and push
// realtime notifications
type SendMessageUseCase struct {
	roomRepo repository.RoomRepository
	msgRepo  repository.MessageRepository
	pubSub   repository.PubSub
	events   EventWriter
}

// NewSendMessageUseCase init send message use case, events may be nil when
// the Kafka feed is disabled
func NewSendMessageUseCase(
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	pubSub repository.PubSub,
	events EventWriter,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		roomRepo: roomRepo,
		msgRepo:  msgRepo,
		pubSub:   pubSub,
		events:   events,
	}
}

// Execute append a message with a service-assigned timestamp, update the
// room's last-message fields (bumping the unread count on customer sends),
// and fan the message out to the room and the vendor dashboard.
func (uc *SendMessageUseCase) Execute(ctx context.Context, roomID, senderID, senderName, content string) (*domain.ChatMessage, error) {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	msg := &domain.ChatMessage{
		ID:         uuid.New().String(),
		RoomID:     roomID,
		Text:       content,
		SenderID:   senderID,
		SenderName: senderName,
		Timestamp:  time.Now().UnixMilli(),
	}

	if err := uc.msgRepo.InsertMessage(ctx, msg); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("insert message err: %v", err))
	}

	isVendorSender := room.VendorID == senderID
	if err := uc.roomRepo.RecordMessageSent(ctx, roomID, msg.Text, msg.Timestamp, isVendorSender); err != nil {
		return nil, err
	}

	if uc.pubSub != nil {
		uc.pubSub.Publish(domain.RoomChannel(roomID), domain.WSResponse{
			Action:  string(domain.NotifyMessage),
			Success: true,
			Payload: messagePayload(msg),
		})
		uc.pubSub.Publish(domain.VendorChannel(room.VendorID), domain.WSResponse{
			Action:  string(domain.NotifyRoom),
			Success: true,
			Payload: map[string]interface{}{
				"room_id": roomID,
			},
		})
	}

	uc.emitEvent(msg)

	return msg, nil
}

// History the latest messages of a room in ascending timestamp order.
// Delivering a snapshot to the room's vendor doubles as the read
// acknowledgement: a nonzero unread count is reset and the dashboard is
// refreshed.
func (uc *SendMessageUseCase) History(ctx context.Context, roomID, viewerID string) ([]domain.ChatMessage, error) {
	messages, err := uc.msgRepo.FindRecent(ctx, roomID, domain.HistoryLimit)
	if err != nil {
		return nil, err
	}

	if len(messages) > 0 {
		if err := uc.MarkSeen(ctx, roomID, viewerID); err != nil {
			logger.Log.Error("reset unread err", zap.String("room", roomID), zap.Error(err))
		}
	}

	return messages, nil
}

// MarkSeen acknowledge delivered messages for a viewer. The reset is
// conditional in the store, so it only lands when the viewer is the room's
// vendor and messages were pending; a successful reset also refreshes the
// dashboard.
func (uc *SendMessageUseCase) MarkSeen(ctx context.Context, roomID, viewerID string) error {
	reset, err := uc.roomRepo.ResetUnread(ctx, roomID, viewerID)
	if err != nil {
		return err
	}
	if reset && uc.pubSub != nil {
		uc.pubSub.Publish(domain.VendorChannel(viewerID), domain.WSResponse{
			Action:  string(domain.NotifyRoom),
			Success: true,
			Payload: map[string]interface{}{
				"room_id": roomID,
			},
		})
	}
	return nil
}

// emitEvent produce the message onto the chat event feed, best effort:
// a failed write is logged once and never retried
func (uc *SendMessageUseCase) emitEvent(msg *domain.ChatMessage) {
	if uc.events == nil {
		return
	}

	value, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("event marshal err", zap.Error(err))
		return
	}

	if err := uc.events.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(msg.RoomID),
		Value: value,
	}); err != nil {
		logger.Log.Error("event feed write err", zap.String("room", msg.RoomID), zap.Error(err))
	}
}

func messagePayload(msg *domain.ChatMessage) map[string]interface{} {
	return map[string]interface{}{
		"id":          msg.ID,
		"room_id":     msg.RoomID,
		"text":        msg.Text,
		"sender_id":   msg.SenderID,
		"sender_name": msg.SenderName,
		"timestamp":   msg.Timestamp,
	}
}
