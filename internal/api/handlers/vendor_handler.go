package handlers

import (
	"context"
	"errors"
	"fmt"

	chatapp "vendor_chat_portal/internal/chat/app"
	vendorapp "vendor_chat_portal/internal/vendors/app"
	"vendor_chat_portal/pkg/logger"
	"vendor_chat_portal/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// VendorHandler vendor login, session and dashboard requests
type VendorHandler struct {
	VendorUC vendorapp.VendorUseCase
	RoomUC   *chatapp.RoomUseCase
}

// NewVendorHandler create VendorHandler
func NewVendorHandler(vendorUC vendorapp.VendorUseCase, roomUC *chatapp.RoomUseCase) *VendorHandler {
	return &VendorHandler{
		VendorUC: vendorUC,
		RoomUC:   roomUC,
	}
}

// Login vendor login
// @Summary Vendor login
// @Description Vendor signs in with email and password
// @Tags Vendors
// @Accept json
// @Produce json
// @Param request body object true "email and password"
// @Success 200 {object} string "login success"
// @Failure 400 {object} string "invalid request"
// @Failure 401 {object} string "invalid email or password"
// @Router /vendor/login [post]
func (h *VendorHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Login", zap.String("Email", req.Email))

	token, vendor, err := h.VendorUC.Login(context.Background(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, vendorapp.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Log.Info(fmt.Sprintf("VendorUC.Login %s", vendor.ID))
	return c.JSON(fiber.Map{
		"token":     token,
		"vendor_id": vendor.ID,
		"name":      vendor.Name,
		"company":   vendor.Company,
		"chat_link": h.VendorUC.ChatLink(vendor.ID),
		"message":   "login success",
	})
}

// Logout vendor logout
// @Summary Vendor logout
// @Description Clear the vendor session
// @Tags Vendors
// @Accept json
// @Produce json
// @Param auth query string false "session token"
// @Success 200 {object} string "logout success"
// @Failure 500 {object} string "server error"
// @Router /vendor/logout [post]
func (h *VendorHandler) Logout(c *fiber.Ctx) error {
	userID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nill", middlewares.TokenUserID)})
	}

	if err := h.VendorUC.Logout(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Log.Info("VendorUC.Logout", zap.String("userID", userID))
	return c.JSON(fiber.Map{"message": "logout success"})
}

// Session restore the signed-in identity
// @Summary Restore session
// @Description Return the stored session for the token holder, used on page load
// @Tags Vendors
// @Produce json
// @Success 200 {object} string "session"
// @Failure 404 {object} string "no session"
// @Router /session [get]
func (h *VendorHandler) Session(c *fiber.Ctx) error {
	userID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nill", middlewares.TokenUserID)})
	}

	session, err := h.VendorUC.RestoreSession(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no session"})
	}

	return c.JSON(fiber.Map{"session": session})
}

// Conversations list the vendor's chat rooms
// @Summary List conversations
// @Description Rooms with this vendor, newest activity first, with unread counts
// @Tags Vendors
// @Produce json
// @Success 200 {object} string "rooms"
// @Failure 500 {object} string "server error"
// @Router /vendor/conversations [get]
func (h *VendorHandler) Conversations(c *fiber.Ctx) error {
	userID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nill", middlewares.TokenUserID)})
	}

	rooms, err := h.RoomUC.ListConversations(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"rooms": rooms})
}

// ChatLink return the vendor's shareable chat link
// @Summary Get chat link
// @Description The link a vendor shares with customers
// @Tags Vendors
// @Produce json
// @Success 200 {object} string "chat link"
// @Router /vendor/link [get]
func (h *VendorHandler) ChatLink(c *fiber.Ctx) error {
	userID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nill", middlewares.TokenUserID)})
	}

	return c.JSON(fiber.Map{"chat_link": h.VendorUC.ChatLink(userID)})
}
