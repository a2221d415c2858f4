package handlers

import (
	"context"
	"errors"
	"fmt"

	chatapp "vendor_chat_portal/internal/chat/app"
	vendorapp "vendor_chat_portal/internal/vendors/app"
	vendordomain "vendor_chat_portal/internal/vendors/domain"
	vendorrepo "vendor_chat_portal/internal/vendors/repository"
	"vendor_chat_portal/pkg/logger"
	"vendor_chat_portal/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ChatHandler customer entry points reached through a vendor's chat link
type ChatHandler struct {
	VendorUC vendorapp.VendorUseCase
	RoomUC   *chatapp.RoomUseCase
}

// NewChatHandler create ChatHandler
func NewChatHandler(vendorUC vendorapp.VendorUseCase, roomUC *chatapp.RoomUseCase) *ChatHandler {
	return &ChatHandler{
		VendorUC: vendorUC,
		RoomUC:   roomUC,
	}
}

// VendorInfo resolve a chat link to its vendor
// @Summary Resolve chat link
// @Description Vendor shown on the customer entry page, 404 when the link is dead
// @Tags Chat
// @Produce json
// @Param vendorID path string true "vendor id from the link"
// @Success 200 {object} string "vendor info"
// @Failure 404 {object} string "chat not found"
// @Router /chat/{vendorID} [get]
func (h *ChatHandler) VendorInfo(c *fiber.Ctx) error {
	vendorID := c.Params("vendorID")

	vendor, err := h.VendorUC.FindVendor(c.Context(), &vendordomain.VendorQuery{ID: &vendorID})
	if err != nil {
		if errors.Is(err, vendorrepo.ErrVendorNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "chat not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"vendor_id": vendor.ID,
		"name":      vendor.Name,
		"company":   vendor.Company,
	})
}

// Join a customer enters the chat with a display name
// @Summary Join chat
// @Description Create or reopen the room for this vendor and customer, returns the customer token
// @Tags Chat
// @Accept json
// @Produce json
// @Param vendorID path string true "vendor id from the link"
// @Param request body object true "customer name, optional customer_id to rejoin"
// @Success 200 {object} string "room info"
// @Failure 400 {object} string "invalid request"
// @Failure 404 {object} string "chat not found"
// @Router /chat/{vendorID}/join [post]
func (h *ChatHandler) Join(c *fiber.Ctx) error {
	vendorID := c.Params("vendorID")

	type request struct {
		Name       string `json:"name"`
		CustomerID string `json:"customer_id"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	logger.Log.Debug("Join", zap.String("vendorID", vendorID), zap.String("name", req.Name))

	roomID, customerID, token, err := h.RoomUC.JoinChat(context.Background(), vendorID, req.Name, req.CustomerID)
	if err != nil {
		if errors.Is(err, vendorrepo.ErrVendorNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "chat not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Log.Info(fmt.Sprintf("RoomUC.JoinChat %s", roomID))
	return c.JSON(fiber.Map{
		"room_id":     roomID,
		"customer_id": customerID,
		"token":       token,
	})
}

// Leave end the customer session
// @Summary Leave chat
// @Description Clear the customer session so the next visit starts fresh
// @Tags Chat
// @Produce json
// @Success 200 {object} string "leave success"
// @Failure 500 {object} string "server error"
// @Router /chat/{vendorID}/leave [post]
func (h *ChatHandler) Leave(c *fiber.Ctx) error {
	userID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nill", middlewares.TokenUserID)})
	}

	if err := h.RoomUC.LeaveChat(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "leave success"})
}
