package app

import (
	"context"
	"testing"

	"vendor_chat_portal/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSendMessageUseCase_Execute_CustomerSend(t *testing.T) {
	ctx := context.Background()
	roomID := "room_vendor-1_customer_abc"

	roomRepo := new(MockRoomRepository)
	msgRepo := new(MockMessageRepository)
	pubSub := new(MockPubSub)
	events := new(MockEventWriter)

	room := &domain.ChatRoom{
		ID:         roomID,
		VendorID:   "vendor-1",
		CustomerID: "customer_abc",
	}
	roomRepo.On("FindByID", ctx, roomID).Return(room, nil)
	msgRepo.On("InsertMessage", ctx, mock.Anything).Return(nil)
	// customer sends bump the vendor's unread count
	roomRepo.On("RecordMessageSent", ctx, roomID, "Hello", mock.Anything, false).Return(nil)
	pubSub.On("Publish", domain.RoomChannel(roomID), mock.Anything).Return(nil)
	pubSub.On("Publish", domain.VendorChannel("vendor-1"), mock.Anything).Return(nil)
	events.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

	uc := NewSendMessageUseCase(roomRepo, msgRepo, pubSub, events)
	msg, err := uc.Execute(ctx, roomID, "customer_abc", "Alice", "Hello")

	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "Hello", msg.Text)
	assert.NotZero(t, msg.Timestamp)

	roomRepo.AssertExpectations(t)
	msgRepo.AssertExpectations(t)
	pubSub.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestSendMessageUseCase_Execute_VendorSend(t *testing.T) {
	ctx := context.Background()
	roomID := "room_vendor-1_customer_abc"

	roomRepo := new(MockRoomRepository)
	msgRepo := new(MockMessageRepository)
	pubSub := new(MockPubSub)

	room := &domain.ChatRoom{
		ID:         roomID,
		VendorID:   "vendor-1",
		CustomerID: "customer_abc",
	}
	roomRepo.On("FindByID", ctx, roomID).Return(room, nil)
	msgRepo.On("InsertMessage", ctx, mock.Anything).Return(nil)
	// vendor replies never count as unread for the vendor
	roomRepo.On("RecordMessageSent", ctx, roomID, "On our way", mock.Anything, true).Return(nil)
	pubSub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	uc := NewSendMessageUseCase(roomRepo, msgRepo, pubSub, nil)
	_, err := uc.Execute(ctx, roomID, "vendor-1", "Acme Foods", "On our way")

	assert.NoError(t, err)
	roomRepo.AssertExpectations(t)
}

func TestSendMessageUseCase_Execute_RoomNotFound(t *testing.T) {
	ctx := context.Background()

	roomRepo := new(MockRoomRepository)
	msgRepo := new(MockMessageRepository)

	roomRepo.On("FindByID", ctx, "room_missing").Return(nil, nil)

	uc := NewSendMessageUseCase(roomRepo, msgRepo, nil, nil)
	_, err := uc.Execute(ctx, "room_missing", "customer_abc", "Alice", "Hello")

	assert.ErrorIs(t, err, ErrRoomNotFound)
	msgRepo.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestSendMessageUseCase_History_VendorViewerResetsUnread(t *testing.T) {
	ctx := context.Background()
	roomID := "room_vendor-1_customer_abc"

	roomRepo := new(MockRoomRepository)
	msgRepo := new(MockMessageRepository)
	pubSub := new(MockPubSub)

	messages := []domain.ChatMessage{
		{ID: "m1", RoomID: roomID, Text: "Hello", Timestamp: 100},
		{ID: "m2", RoomID: roomID, Text: "Anyone there?", Timestamp: 200},
	}
	msgRepo.On("FindRecent", ctx, roomID, int64(domain.HistoryLimit)).Return(messages, nil)
	roomRepo.On("ResetUnread", ctx, roomID, "vendor-1").Return(true, nil)
	pubSub.On("Publish", domain.VendorChannel("vendor-1"), mock.Anything).Return(nil)

	uc := NewSendMessageUseCase(roomRepo, msgRepo, pubSub, nil)
	got, err := uc.History(ctx, roomID, "vendor-1")

	assert.NoError(t, err)
	assert.Equal(t, messages, got)
	roomRepo.AssertExpectations(t)
	pubSub.AssertExpectations(t)
}

func TestSendMessageUseCase_History_CustomerViewer(t *testing.T) {
	ctx := context.Background()
	roomID := "room_vendor-1_customer_abc"

	roomRepo := new(MockRoomRepository)
	msgRepo := new(MockMessageRepository)
	pubSub := new(MockPubSub)

	messages := []domain.ChatMessage{
		{ID: "m1", RoomID: roomID, Text: "Hello", Timestamp: 100},
	}
	msgRepo.On("FindRecent", ctx, roomID, int64(domain.HistoryLimit)).Return(messages, nil)
	// the customer is not the room's vendor, so nothing matches the filter
	roomRepo.On("ResetUnread", ctx, roomID, "customer_abc").Return(false, nil)

	uc := NewSendMessageUseCase(roomRepo, msgRepo, pubSub, nil)
	got, err := uc.History(ctx, roomID, "customer_abc")

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	pubSub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSendMessageUseCase_MarkSeen_VendorViewer(t *testing.T) {
	ctx := context.Background()
	roomID := "room_vendor-1_customer_abc"

	roomRepo := new(MockRoomRepository)
	pubSub := new(MockPubSub)

	// a vendor holding the room open acknowledges each arriving message
	roomRepo.On("ResetUnread", ctx, roomID, "vendor-1").Return(true, nil)
	pubSub.On("Publish", domain.VendorChannel("vendor-1"), mock.Anything).Return(nil)

	uc := NewSendMessageUseCase(roomRepo, new(MockMessageRepository), pubSub, nil)
	assert.NoError(t, uc.MarkSeen(ctx, roomID, "vendor-1"))

	push := pubSub.Calls[0].Arguments.Get(1).(domain.WSResponse)
	assert.Equal(t, string(domain.NotifyRoom), push.Action)
	assert.Equal(t, roomID, push.Payload["room_id"])

	roomRepo.AssertExpectations(t)
	pubSub.AssertExpectations(t)
}

func TestSendMessageUseCase_MarkSeen_NothingPending(t *testing.T) {
	ctx := context.Background()
	roomID := "room_vendor-1_customer_abc"

	roomRepo := new(MockRoomRepository)
	pubSub := new(MockPubSub)

	// customer viewers and already-acknowledged rooms match nothing
	roomRepo.On("ResetUnread", ctx, roomID, "customer_abc").Return(false, nil)

	uc := NewSendMessageUseCase(roomRepo, new(MockMessageRepository), pubSub, nil)
	assert.NoError(t, uc.MarkSeen(ctx, roomID, "customer_abc"))

	pubSub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSendMessageUseCase_History_EmptyRoom(t *testing.T) {
	ctx := context.Background()
	roomID := "room_vendor-1_customer_abc"

	roomRepo := new(MockRoomRepository)
	msgRepo := new(MockMessageRepository)

	msgRepo.On("FindRecent", ctx, roomID, int64(domain.HistoryLimit)).Return([]domain.ChatMessage{}, nil)

	uc := NewSendMessageUseCase(roomRepo, msgRepo, nil, nil)
	got, err := uc.History(ctx, roomID, "vendor-1")

	assert.NoError(t, err)
	assert.Empty(t, got)
	// an empty room has no unread state to touch
	roomRepo.AssertNotCalled(t, "ResetUnread", mock.Anything, mock.Anything, mock.Anything)
}
