package app

import (
	"context"
	"time"

	"vendor_chat_portal/internal/chat/domain"
	vendordomain "vendor_chat_portal/internal/vendors/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// EnsureRoom mock room upsert
func (m *MockRoomRepository) EnsureRoom(ctx context.Context, room *domain.ChatRoom) (bool, error) {
	args := m.Called(ctx, room)
	return args.Bool(0), args.Error(1)
}

// FindByID mock find room by room id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByVendor mock list rooms of a vendor
func (m *MockRoomRepository) FindByVendor(ctx context.Context, vendorID string) ([]domain.ChatRoom, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// RecordMessageSent mock last-message bookkeeping
func (m *MockRoomRepository) RecordMessageSent(ctx context.Context, roomID, text string, sentAt int64, isVendorSender bool) error {
	args := m.Called(ctx, roomID, text, sentAt, isVendorSender)
	return args.Error(0)
}

// ResetUnread mock unread reset
func (m *MockRoomRepository) ResetUnread(ctx context.Context, roomID, viewerID string) (bool, error) {
	args := m.Called(ctx, roomID, viewerID)
	return args.Bool(0), args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// InsertMessage mock insert msg
func (m *MockMessageRepository) InsertMessage(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindRecent mock recent messages of a room
func (m *MockMessageRepository) FindRecent(ctx context.Context, roomID string, limit int64) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, roomID, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTypingRepository Mock TypingRepository
type MockTypingRepository struct {
	mock.Mock
}

// Upsert mock typing slot write
func (m *MockTypingRepository) Upsert(ctx context.Context, status *domain.TypingStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

// Find mock typing slot read
func (m *MockTypingRepository) Find(ctx context.Context, roomID string) (*domain.TypingStatus, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.TypingStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPubSub Mock PubSub
type MockPubSub struct {
	mock.Mock
}

// Publish mock publisher
func (m *MockPubSub) Publish(channel string, resp domain.WSResponse) error {
	args := m.Called(channel, resp)
	return args.Error(0)
}

// Subscribe mock subscriber
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	args := m.Called(channel, handler)
	return args.Error(0)
}

// MockVendorRepository Mock VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

// CreateVendor mock vendor insert
func (m *MockVendorRepository) CreateVendor(ctx context.Context, vendor *vendordomain.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

// FindByVendor mock vendor lookup
func (m *MockVendorRepository) FindByVendor(ctx context.Context, vendorQuery *vendordomain.VendorQuery) (*vendordomain.Vendor, error) {
	args := m.Called(ctx, vendorQuery)
	if args.Get(0) != nil {
		return args.Get(0).(*vendordomain.Vendor), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSessionRepository Mock RedisRepository for sessions
type MockSessionRepository struct {
	mock.Mock
}

// Set mock session write
func (m *MockSessionRepository) Set(ctx context.Context, key string, value vendordomain.Session, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Get mock session read
func (m *MockSessionRepository) Get(ctx context.Context, key string) (vendordomain.Session, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(vendordomain.Session), args.Error(1)
}

// Del mock session delete
func (m *MockSessionRepository) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetTTL mock session ttl read
func (m *MockSessionRepository) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// ExtendTTL mock session ttl extension
func (m *MockSessionRepository) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

// MockEventWriter Mock EventWriter
type MockEventWriter struct {
	mock.Mock
}

// WriteMessages mock event feed write
func (m *MockEventWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}
