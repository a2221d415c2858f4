package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vendor_chat_portal/internal/chat/domain"
	"vendor_chat_portal/internal/chat/repository"
	vendordomain "vendor_chat_portal/internal/vendors/domain"
	vendorrepo "vendor_chat_portal/internal/vendors/repository"
	"vendor_chat_portal/pkg/database"
	token "vendor_chat_portal/pkg/token"
)

// RoomUseCase customer join flow and the vendor conversation list
type RoomUseCase struct {
	roomRepo    repository.RoomRepository
	vendorRepo  vendorrepo.VendorRepository
	sessionRepo database.RedisRepository[vendordomain.Session]
	pubSub      repository.PubSub
	sessionTTL  time.Duration
}

// NewRoomUseCase init room use case
func NewRoomUseCase(
	roomRepo repository.RoomRepository,
	vendorRepo vendorrepo.VendorRepository,
	sessionRepo database.RedisRepository[vendordomain.Session],
	pubSub repository.PubSub,
	sessionTTL time.Duration,
) *RoomUseCase {
	return &RoomUseCase{
		roomRepo:    roomRepo,
		vendorRepo:  vendorRepo,
		sessionRepo: sessionRepo,
		pubSub:      pubSub,
		sessionTTL:  sessionTTL,
	}
}

// JoinChat a customer opens a vendor's chat link and joins with a display
// name. Passing an existing customerID rejoins the same room; an empty one
// mints a new customer identity. Returns (roomID, customerID, token).
func (uc *RoomUseCase) JoinChat(ctx context.Context, vendorID, customerName, customerID string) (string, string, string, error) {
	vendor, err := uc.vendorRepo.FindByVendor(ctx, &vendordomain.VendorQuery{ID: &vendorID})
	if err != nil {
		// unknown link is terminal for the caller, never a login prompt
		return "", "", "", err
	}

	// a rejoin id must belong to a live session, otherwise anyone could
	// claim an arbitrary customer identity through the join form
	if customerID != "" {
		if _, err := uc.sessionRepo.Get(ctx, customerID); err != nil {
			customerID = ""
		}
	}
	if customerID == "" {
		customerID = "customer_" + uuid.New().String()
	}

	now := time.Now().UnixMilli()
	room := &domain.ChatRoom{
		ID:              domain.RoomID(vendor.ID, customerID),
		VendorID:        vendor.ID,
		VendorName:      vendor.Name,
		VendorEmail:     vendor.Email,
		CustomerID:      customerID,
		CustomerName:    customerName,
		CreatedAt:       now,
		LastMessage:     domain.ChatStartedMessage,
		LastMessageTime: now,
		UnreadCount:     0,
	}

	created, err := uc.roomRepo.EnsureRoom(ctx, room)
	if err != nil {
		return "", "", "", err
	}

	t, err := token.GenerateJWTWrapper(customerID, customerName, string(token.RoleCustomer))
	if err != nil {
		return "", "", "", err
	}

	session := vendordomain.Session{
		UserID:    customerID,
		Name:      customerName,
		Role:      string(token.RoleCustomer),
		VendorID:  vendor.ID,
		CreatedAt: time.Now(),
	}
	if err := uc.sessionRepo.Set(ctx, customerID, session, uc.sessionTTL); err != nil {
		return "", "", "", err
	}

	if created && uc.pubSub != nil {
		uc.notifyRoomChanged(room.ID, vendor.ID)
	}

	return room.ID, customerID, t, nil
}

// ListConversations all rooms of a vendor, most recent activity first
func (uc *RoomUseCase) ListConversations(ctx context.Context, vendorID string) ([]domain.ChatRoom, error) {
	return uc.roomRepo.FindByVendor(ctx, vendorID)
}

// FindRoom fetch one room, nil when absent
func (uc *RoomUseCase) FindRoom(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	return uc.roomRepo.FindByID(ctx, roomID)
}

// LeaveChat clear a customer session
func (uc *RoomUseCase) LeaveChat(ctx context.Context, customerID string) error {
	return uc.sessionRepo.Del(ctx, customerID)
}

func (uc *RoomUseCase) notifyRoomChanged(roomID, vendorID string) {
	uc.pubSub.Publish(domain.VendorChannel(vendorID), domain.WSResponse{
		Action:  string(domain.NotifyRoom),
		Success: true,
		Payload: map[string]interface{}{
			"room_id": roomID,
		},
	})
}
