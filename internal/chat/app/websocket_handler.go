package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"vendor_chat_portal/internal/chat/domain"
	"vendor_chat_portal/pkg/logger"
	"vendor_chat_portal/pkg/middlewares"
	token "vendor_chat_portal/pkg/token"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler bundles the use cases behind the websocket endpoint
type ChatWebsocketHandler struct {
	roomUC    *RoomUseCase
	messageUC *SendMessageUseCase
	typingUC  *TypingUseCase
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	roomUC *RoomUseCase,
	messageUC *SendMessageUseCase,
	typingUC *TypingUseCase,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		roomUC:    roomUC,
		messageUC: messageUC,
		typingUC:  typingUC,
	}
}

// wsConn per-connection state. The read loop, the pub/sub callbacks and the
// typing timer all touch the connection, so writes go through one mutex.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex

	userID   string
	userName string
	role     string

	roomMu      sync.Mutex
	currentRoom string
	roomCancel  context.CancelFunc
	typingTimer *time.Timer
}

// HandleConnection entry point for one websocket connection
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, _ := conn.Locals(middlewares.TokenUserID).(string)
	userName, _ := conn.Locals(middlewares.TokenUserName).(string)
	role, _ := conn.Locals(middlewares.TokenRole).(string)
	logger.Log.Info("websocket handle", zap.String("userID", userID), zap.String("role", role))

	c := &wsConn{
		conn:     conn,
		userID:   userID,
		userName: userName,
		role:     role,
	}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		h.exitRoom(c)
		logger.Log.Info("websocket close", zap.String("userID", userID))
		conn.Close()
		cancel()
	}()

	// fiber handles close frames internally, surface them for logging
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received PONG", zap.String("data", appData))
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// a vendor connection follows its dashboard channel for the whole
	// lifetime of the socket, so room-list changes arrive without polling
	if role == string(token.RoleVendor) {
		h.roomUC.pubSub.Subscribe(ctxClose, domain.VendorChannel(userID), func(resp domain.WSResponse) {
			h.sendResponse(c, resp)
		})
	}

	go func() {
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				err := conn.WriteMessage(websocket.PingMessage, []byte("ping message"))
				c.mu.Unlock()
				if err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Info("connection closed", zap.String("userID", userID))
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			h.sendError(c, "unknown message type")
			continue
		}
		h.textMessageAction(ctx, c, message)
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, c *wsConn, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {

	case string(domain.EnterRoom):
		room, err := h.roomUC.FindRoom(ctx, req.RoomID)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		if room == nil || !room.IsParticipant(c.userID) {
			resp.Error = ErrRoomNotFound.Error()
			break
		}

		h.exitRoom(c)

		ctxEnterRoom, cancelRoom := context.WithCancel(context.Background())
		c.roomMu.Lock()
		c.currentRoom = req.RoomID
		c.roomCancel = cancelRoom
		c.roomMu.Unlock()

		isVendorViewer := room.VendorID == c.userID
		h.roomUC.pubSub.Subscribe(ctxEnterRoom, domain.RoomChannel(req.RoomID), func(push domain.WSResponse) {
			// the typing slot is only interesting when someone else typed
			if push.Action == string(domain.NotifyTyping) {
				if id, ok := push.Payload["user_id"].(string); ok && id == c.userID {
					return
				}
			}
			// a vendor with the room open has seen the message the moment
			// it arrives, same acknowledgement as the history snapshot
			if push.Action == string(domain.NotifyMessage) && isVendorViewer {
				if sender, _ := push.Payload["sender_id"].(string); sender != c.userID {
					if err := h.messageUC.MarkSeen(context.Background(), req.RoomID, c.userID); err != nil {
						logger.Log.Errorf("mark seen error:", err)
					}
				}
			}
			h.sendResponse(c, push)
		})

		// the history snapshot doubles as the vendor's read acknowledgement
		messages, err := h.messageUC.History(ctx, req.RoomID, c.userID)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		resp.Success = true
		resp.Payload["room_id"] = req.RoomID
		history := domain.WSResponse{
			Action:  string(domain.MessageHistory),
			Success: true,
			Payload: map[string]interface{}{
				"room_id":  req.RoomID,
				"messages": messages,
			},
		}
		h.sendResponse(c, history)

	case string(domain.LeaveRoom):
		c.roomMu.Lock()
		roomID := c.currentRoom
		c.roomMu.Unlock()
		h.exitRoom(c)
		resp.Success = true
		resp.Payload["leave_room"] = roomID

	case string(domain.SendMessage):
		if !h.inRoom(c, req.RoomID) {
			resp.Error = "enter the room before sending"
			break
		}
		m, err := h.messageUC.Execute(ctx, req.RoomID, c.userID, c.userName, req.Content)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_id"] = m.ID
			resp.Payload["timestamp"] = m.Timestamp
		}
		// sending ends the sender's composing state
		h.stopTyping(c)

	case string(domain.SetTyping):
		if !h.inRoom(c, req.RoomID) {
			resp.Error = "enter the room before typing"
			break
		}
		if err := h.typingUC.SetTyping(ctx, req.RoomID, c.userID, c.userName, req.IsTyping); err != nil {
			resp.Error = err.Error()
			break
		}
		resp.Success = true
		if req.IsTyping {
			h.armTypingTimer(c, req.RoomID)
		} else {
			c.roomMu.Lock()
			if c.typingTimer != nil {
				c.typingTimer.Stop()
				c.typingTimer = nil
			}
			c.roomMu.Unlock()
		}

	default:
		h.sendError(c, "unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err",
			zap.String("UserID", c.userID),
			zap.String("Action", req.Action),
			zap.String("err", resp.Error))
	}
	h.sendResponse(c, resp)
}

// armTypingTimer restart the inactivity countdown; when it fires the typing
// flag is cleared without another keystroke
func (h *ChatWebsocketHandler) armTypingTimer(c *wsConn, roomID string) {
	c.roomMu.Lock()
	defer c.roomMu.Unlock()
	if c.typingTimer != nil {
		c.typingTimer.Stop()
	}
	c.typingTimer = time.AfterFunc(domain.TypingIdleTimeout, func() {
		if err := h.typingUC.SetTyping(context.Background(), roomID, c.userID, c.userName, false); err != nil {
			logger.Log.Errorf("typing timeout clear error:", err)
		}
	})
}

// stopTyping clear the composing state of the current room immediately
func (h *ChatWebsocketHandler) stopTyping(c *wsConn) {
	c.roomMu.Lock()
	roomID := c.currentRoom
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	c.roomMu.Unlock()

	if roomID == "" {
		return
	}
	if err := h.typingUC.SetTyping(context.Background(), roomID, c.userID, c.userName, false); err != nil {
		logger.Log.Errorf("typing clear error:", err)
	}
}

// exitRoom tear down the current room subscription and composing state
func (h *ChatWebsocketHandler) exitRoom(c *wsConn) {
	h.stopTyping(c)

	c.roomMu.Lock()
	if c.roomCancel != nil {
		c.roomCancel()
		c.roomCancel = nil
	}
	c.currentRoom = ""
	c.roomMu.Unlock()
}

func (h *ChatWebsocketHandler) inRoom(c *wsConn, roomID string) bool {
	c.roomMu.Lock()
	defer c.roomMu.Unlock()
	return roomID != "" && c.currentRoom == roomID
}

// sendResponse write one JSON envelope to the client
func (h *ChatWebsocketHandler) sendResponse(c *wsConn, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (h *ChatWebsocketHandler) sendError(c *wsConn, errorMsg string) {
	resp := domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	}
	h.sendResponse(c, resp)
}
