package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"vendor_chat_portal/internal/chat/domain"
	"vendor_chat_portal/internal/chat/repository"
	vendordomain "vendor_chat_portal/internal/vendors/domain"
	vendorrepo "vendor_chat_portal/internal/vendors/repository"
	"vendor_chat_portal/pkg/database"
	"vendor_chat_portal/pkg/logger"
	"vendor_chat_portal/pkg/middlewares"
	testtool "vendor_chat_portal/pkg/test_tool"
	token "vendor_chat_portal/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	mongoContainer testcontainers.Container
	redisContainer testcontainers.Container
	portalApp      *fiber.App

	integrationRoomUC  *RoomUseCase
	integrationMsgUC   *SendMessageUseCase
	integrationMsgRepo repository.MessageRepository

	// set when the docker environment is missing so tests can skip
	integrationErr error
)

// memVendorRepo in-memory vendor directory, the portal's pg store is not
// under test here
type memVendorRepo struct {
	mu      sync.Mutex
	vendors map[string]*vendordomain.Vendor
}

func (r *memVendorRepo) CreateVendor(ctx context.Context, vendor *vendordomain.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vendors[vendor.ID] = vendor
	return nil
}

func (r *memVendorRepo) FindByVendor(ctx context.Context, q *vendordomain.VendorQuery) (*vendordomain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vendors {
		if q.ID != nil && v.ID == *q.ID {
			return v, nil
		}
		if q.Email != nil && v.Email == *q.Email {
			return v, nil
		}
	}
	return nil, vendorrepo.ErrVendorNotFound
}

func TestMain(m *testing.M) {
	ctx := context.Background()
	logger.SetNewNop()

	integrationErr = trySetupIntegration(ctx)
	if integrationErr != nil {
		log.Printf("integration environment unavailable, tests will skip: %v", integrationErr)
	}

	code := m.Run()

	if mongoContainer != nil {
		_ = mongoContainer.Terminate(ctx)
	}
	if redisContainer != nil {
		_ = redisContainer.Terminate(ctx)
	}
	if portalApp != nil {
		_ = portalApp.Shutdown()
	}

	os.Exit(code)
}

// trySetupIntegration testcontainers panics (rather than erroring) when no
// docker host can be resolved, so the setup is fenced off to keep the rest
// of the package runnable
func trySetupIntegration(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("container runtime not available: %v", r)
		}
	}()
	return setupIntegration(ctx)
}

func setupIntegration(ctx context.Context) error {
	var err error
	var mongoHost, mongoPort, redisHost, redisPort string

	mongoContainer, mongoHost, mongoPort, err = testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:latest",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		return fmt.Errorf("start mongo container: %w", err)
	}

	redisContainer, redisHost, redisPort, err = testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:latest",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		return fmt.Errorf("start redis container: %w", err)
	}

	mongo, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: 5,
	}, "test_portal_db")
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort),
		DB:   0,
	})

	vendorDir := &memVendorRepo{vendors: map[string]*vendordomain.Vendor{
		"vendor-1": {
			ID:      "vendor-1",
			Name:    "Acme Foods",
			Email:   "acme@example.com",
			Company: "Acme",
		},
	}}

	roomRepo := repository.NewMongoRoomRepository(mongo.Database)
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	typingRepo := repository.NewMongoTypingRepository(mongo.Database)
	pubSub := repository.NewRedisPubSub(redisClient)
	sessionRepo := database.NewRedisRepository[vendordomain.Session](redisClient)

	integrationRoomUC = NewRoomUseCase(roomRepo, vendorDir, sessionRepo, pubSub, 0)
	integrationMsgUC = NewSendMessageUseCase(roomRepo, msgRepo, pubSub, nil)
	integrationMsgRepo = msgRepo
	typingUC := NewTypingUseCase(typingRepo, pubSub)

	handler := NewChatWebsocketHandler(integrationRoomUC, integrationMsgUC, typingUC)

	portalApp = fiber.New()
	portalApp.Use("/ws", middlewares.JWTMiddleware())
	portalApp.Get("/ws", websocket.New(func(c *websocket.Conn) {
		handler.HandleConnection(context.Background(), c)
	}))

	go func() {
		if err := portalApp.Listen(":8082"); err != nil {
			log.Printf("websocket server stopped: %v", err)
		}
	}()
	time.Sleep(2 * time.Second)

	return nil
}

func requireIntegration(t *testing.T) {
	if integrationErr != nil {
		t.Skipf("skipping, integration environment unavailable: %v", integrationErr)
	}
}

func dialWS(t *testing.T, userID, name, role string) *gws.Conn {
	tok, err := token.GenerateJWT(userID, name, role, "test")
	assert.NoError(t, err)

	conn, _, err := gws.DefaultDialer.Dial("ws://127.0.0.1:8082/ws?auth="+tok, nil)
	assert.NoError(t, err)
	return conn
}

// readAction read frames until one carries the wanted action
func readAction(t *testing.T, conn *gws.Conn, action string) domain.WSResponse {
	deadline := time.Now().Add(10 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read for action %q: %v", action, err)
		}
		var resp domain.WSResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			continue
		}
		if resp.Action == action {
			return resp
		}
	}
	t.Fatalf("no %q frame before deadline", action)
	return domain.WSResponse{}
}

func TestJoinCreatesRoom(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()

	roomID, customerID, tok, err := integrationRoomUC.JoinChat(ctx, "vendor-1", "Alice", "")
	assert.NoError(t, err)
	assert.NotEmpty(t, tok)

	room, err := integrationRoomUC.FindRoom(ctx, roomID)
	assert.NoError(t, err)
	assert.Equal(t, domain.ChatStartedMessage, room.LastMessage)
	assert.Equal(t, "Alice", room.CustomerName)
	assert.Equal(t, 0, room.UnreadCount)

	// rejoining with the same identity reuses the room
	again, rejoinedID, _, err := integrationRoomUC.JoinChat(ctx, "vendor-1", "Alice", customerID)
	_ = again
	assert.NoError(t, err)
	assert.Equal(t, customerID, rejoinedID)

	rooms, err := integrationRoomUC.ListConversations(ctx, "vendor-1")
	assert.NoError(t, err)
	count := 0
	for _, r := range rooms {
		if r.ID == roomID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMessageAndUnreadFlow(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()

	roomID, customerID, _, err := integrationRoomUC.JoinChat(ctx, "vendor-1", "Bob", "")
	assert.NoError(t, err)

	customer := dialWS(t, customerID, "Bob", string(token.RoleCustomer))
	defer customer.Close()

	enter, _ := json.Marshal(domain.WSRequest{Action: string(domain.EnterRoom), RoomID: roomID})
	assert.NoError(t, customer.WriteMessage(gws.TextMessage, enter))
	readAction(t, customer, string(domain.MessageHistory))

	send, _ := json.Marshal(domain.WSRequest{Action: string(domain.SendMessage), RoomID: roomID, Content: "Hello"})
	assert.NoError(t, customer.WriteMessage(gws.TextMessage, send))
	push := readAction(t, customer, string(domain.NotifyMessage))
	assert.Equal(t, "Hello", push.Payload["text"])

	time.Sleep(time.Second)
	room, err := integrationRoomUC.FindRoom(ctx, roomID)
	assert.NoError(t, err)
	assert.Equal(t, "Hello", room.LastMessage)
	assert.Equal(t, 1, room.UnreadCount)

	// the vendor opening the room acknowledges the message
	vendor := dialWS(t, "vendor-1", "Acme Foods", string(token.RoleVendor))
	defer vendor.Close()
	assert.NoError(t, vendor.WriteMessage(gws.TextMessage, enter))
	history := readAction(t, vendor, string(domain.MessageHistory))
	assert.NotEmpty(t, history.Payload["messages"])

	time.Sleep(time.Second)
	room, err = integrationRoomUC.FindRoom(ctx, roomID)
	assert.NoError(t, err)
	assert.Equal(t, 0, room.UnreadCount)

	// a message arriving while the vendor still has the room open is
	// acknowledged on delivery, the counter never sticks at 1
	send2, _ := json.Marshal(domain.WSRequest{Action: string(domain.SendMessage), RoomID: roomID, Content: "Are you there?"})
	assert.NoError(t, customer.WriteMessage(gws.TextMessage, send2))
	live := readAction(t, vendor, string(domain.NotifyMessage))
	assert.Equal(t, "Are you there?", live.Payload["text"])

	time.Sleep(time.Second)
	room, err = integrationRoomUC.FindRoom(ctx, roomID)
	assert.NoError(t, err)
	assert.Equal(t, "Are you there?", room.LastMessage)
	assert.Equal(t, 0, room.UnreadCount)
}

func TestTypingFlow(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()

	roomID, customerID, _, err := integrationRoomUC.JoinChat(ctx, "vendor-1", "Cara", "")
	assert.NoError(t, err)

	customer := dialWS(t, customerID, "Cara", string(token.RoleCustomer))
	defer customer.Close()
	vendor := dialWS(t, "vendor-1", "Acme Foods", string(token.RoleVendor))
	defer vendor.Close()

	enter, _ := json.Marshal(domain.WSRequest{Action: string(domain.EnterRoom), RoomID: roomID})
	assert.NoError(t, customer.WriteMessage(gws.TextMessage, enter))
	readAction(t, customer, string(domain.MessageHistory))
	assert.NoError(t, vendor.WriteMessage(gws.TextMessage, enter))
	readAction(t, vendor, string(domain.MessageHistory))

	typing, _ := json.Marshal(domain.WSRequest{Action: string(domain.SetTyping), RoomID: roomID, IsTyping: true})
	assert.NoError(t, customer.WriteMessage(gws.TextMessage, typing))

	push := readAction(t, vendor, string(domain.NotifyTyping))
	assert.Equal(t, customerID, push.Payload["user_id"])
	assert.Equal(t, true, push.Payload["is_typing"])

	// two seconds of silence clears the flag without another frame
	cleared := readAction(t, vendor, string(domain.NotifyTyping))
	assert.Equal(t, false, cleared.Payload["is_typing"])
}

func TestLeaveRoomEchoesRoomID(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()

	roomID, customerID, _, err := integrationRoomUC.JoinChat(ctx, "vendor-1", "Eve", "")
	assert.NoError(t, err)

	customer := dialWS(t, customerID, "Eve", string(token.RoleCustomer))
	defer customer.Close()

	enter, _ := json.Marshal(domain.WSRequest{Action: string(domain.EnterRoom), RoomID: roomID})
	assert.NoError(t, customer.WriteMessage(gws.TextMessage, enter))
	readAction(t, customer, string(domain.MessageHistory))

	leave, _ := json.Marshal(domain.WSRequest{Action: string(domain.LeaveRoom)})
	assert.NoError(t, customer.WriteMessage(gws.TextMessage, leave))
	resp := readAction(t, customer, string(domain.LeaveRoom))
	assert.Equal(t, roomID, resp.Payload["leave_room"])
}

func TestHistoryCapAndOrder(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()

	roomID, customerID, _, err := integrationRoomUC.JoinChat(ctx, "vendor-1", "Dana", "")
	assert.NoError(t, err)

	base := time.Now().UnixMilli()
	for i := 0; i < 120; i++ {
		msg := &domain.ChatMessage{
			ID:         fmt.Sprintf("hist-%s-%03d", roomID, i),
			RoomID:     roomID,
			Text:       fmt.Sprintf("message %d", i),
			SenderID:   customerID,
			SenderName: "Dana",
			Timestamp:  base + int64(i),
		}
		assert.NoError(t, integrationMsgRepo.InsertMessage(ctx, msg))
	}

	messages, err := integrationMsgUC.History(ctx, roomID, customerID)
	assert.NoError(t, err)
	assert.Len(t, messages, domain.HistoryLimit)

	// only the newest hundred survive, oldest first
	assert.Equal(t, base+20, messages[0].Timestamp)
	assert.Equal(t, base+119, messages[len(messages)-1].Timestamp)
	for i := 1; i < len(messages); i++ {
		assert.LessOrEqual(t, messages[i-1].Timestamp, messages[i].Timestamp)
	}
}
