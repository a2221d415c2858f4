package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vendor_chat_portal/internal/chat/domain"
	vendordomain "vendor_chat_portal/internal/vendors/domain"
	vendorrepo "vendor_chat_portal/internal/vendors/repository"
	"vendor_chat_portal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	logger.SetNewNop()
}

func TestRoomUseCase_JoinChat_NewCustomer(t *testing.T) {
	ctx := context.Background()

	roomRepo := new(MockRoomRepository)
	vendorRepo := new(MockVendorRepository)
	sessionRepo := new(MockSessionRepository)
	pubSub := new(MockPubSub)

	vendor := &vendordomain.Vendor{
		ID:      "vendor-1",
		Name:    "Acme Foods",
		Email:   "acme@example.com",
		Company: "Acme",
	}
	vendorRepo.On("FindByVendor", ctx, mock.Anything).Return(vendor, nil)
	roomRepo.On("EnsureRoom", ctx, mock.Anything).Return(true, nil)
	sessionRepo.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	pubSub.On("Publish", domain.VendorChannel("vendor-1"), mock.Anything).Return(nil)

	uc := NewRoomUseCase(roomRepo, vendorRepo, sessionRepo, pubSub, 0)
	roomID, customerID, tok, err := uc.JoinChat(ctx, "vendor-1", "Alice", "")

	assert.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.True(t, strings.HasPrefix(customerID, "customer_"))
	assert.Equal(t, domain.RoomID("vendor-1", customerID), roomID)

	// the fresh room carries the started marker before any message exists
	created := roomRepo.Calls[0].Arguments.Get(1).(*domain.ChatRoom)
	assert.Equal(t, domain.ChatStartedMessage, created.LastMessage)
	assert.Equal(t, 0, created.UnreadCount)

	roomRepo.AssertExpectations(t)
	sessionRepo.AssertExpectations(t)
	pubSub.AssertExpectations(t)
}

func TestRoomUseCase_JoinChat_Rejoin(t *testing.T) {
	ctx := context.Background()

	roomRepo := new(MockRoomRepository)
	vendorRepo := new(MockVendorRepository)
	sessionRepo := new(MockSessionRepository)
	pubSub := new(MockPubSub)

	vendor := &vendordomain.Vendor{ID: "vendor-1", Name: "Acme Foods"}
	vendorRepo.On("FindByVendor", ctx, mock.Anything).Return(vendor, nil)
	sessionRepo.On("Get", ctx, "customer_abc").Return(vendordomain.Session{
		UserID: "customer_abc",
		Name:   "Alice",
	}, nil)
	// room already exists, so the upsert reports nothing created
	roomRepo.On("EnsureRoom", ctx, mock.Anything).Return(false, nil)
	sessionRepo.On("Set", ctx, "customer_abc", mock.Anything, mock.Anything).Return(nil)

	uc := NewRoomUseCase(roomRepo, vendorRepo, sessionRepo, pubSub, 0)
	roomID, customerID, _, err := uc.JoinChat(ctx, "vendor-1", "Alice", "customer_abc")

	assert.NoError(t, err)
	assert.Equal(t, "customer_abc", customerID)
	assert.Equal(t, "room_vendor-1_customer_abc", roomID)

	// rejoining must not refresh the vendor dashboard
	pubSub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRoomUseCase_JoinChat_UnknownCustomerIDMintsFresh(t *testing.T) {
	ctx := context.Background()

	roomRepo := new(MockRoomRepository)
	vendorRepo := new(MockVendorRepository)
	sessionRepo := new(MockSessionRepository)
	pubSub := new(MockPubSub)

	vendor := &vendordomain.Vendor{ID: "vendor-1", Name: "Acme Foods"}
	vendorRepo.On("FindByVendor", ctx, mock.Anything).Return(vendor, nil)
	// no session behind the claimed id, the join must not honor it
	sessionRepo.On("Get", ctx, "customer_forged").Return(vendordomain.Session{}, errors.New("redis: nil"))
	roomRepo.On("EnsureRoom", ctx, mock.Anything).Return(true, nil)
	sessionRepo.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	pubSub.On("Publish", domain.VendorChannel("vendor-1"), mock.Anything).Return(nil)

	uc := NewRoomUseCase(roomRepo, vendorRepo, sessionRepo, pubSub, 0)
	roomID, customerID, tok, err := uc.JoinChat(ctx, "vendor-1", "Mallory", "customer_forged")

	assert.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.NotEqual(t, "customer_forged", customerID)
	assert.True(t, strings.HasPrefix(customerID, "customer_"))
	assert.Equal(t, domain.RoomID("vendor-1", customerID), roomID)
}

func TestRoomUseCase_JoinChat_UnknownVendor(t *testing.T) {
	ctx := context.Background()

	roomRepo := new(MockRoomRepository)
	vendorRepo := new(MockVendorRepository)
	sessionRepo := new(MockSessionRepository)
	pubSub := new(MockPubSub)

	vendorRepo.On("FindByVendor", ctx, mock.Anything).Return(nil, vendorrepo.ErrVendorNotFound)

	uc := NewRoomUseCase(roomRepo, vendorRepo, sessionRepo, pubSub, 0)
	_, _, _, err := uc.JoinChat(ctx, "no-such-vendor", "Alice", "")

	assert.ErrorIs(t, err, vendorrepo.ErrVendorNotFound)
	roomRepo.AssertNotCalled(t, "EnsureRoom", mock.Anything, mock.Anything)
	sessionRepo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomUseCase_ListConversations(t *testing.T) {
	ctx := context.Background()

	roomRepo := new(MockRoomRepository)
	rooms := []domain.ChatRoom{
		{ID: "room_vendor-1_customer_b", LastMessageTime: 200},
		{ID: "room_vendor-1_customer_a", LastMessageTime: 100},
	}
	roomRepo.On("FindByVendor", ctx, "vendor-1").Return(rooms, nil)

	uc := NewRoomUseCase(roomRepo, nil, nil, nil, 0)
	got, err := uc.ListConversations(ctx, "vendor-1")

	assert.NoError(t, err)
	assert.Equal(t, rooms, got)
	roomRepo.AssertExpectations(t)
}

func TestRoomUseCase_LeaveChat(t *testing.T) {
	ctx := context.Background()

	sessionRepo := new(MockSessionRepository)
	sessionRepo.On("Del", ctx, "customer_abc").Return(nil)

	uc := NewRoomUseCase(nil, nil, sessionRepo, nil, 0)
	err := uc.LeaveChat(ctx, "customer_abc")

	assert.NoError(t, err)
	sessionRepo.AssertExpectations(t)
}
