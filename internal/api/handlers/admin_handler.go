package handlers

import (
	"context"
	"fmt"

	vendorapp "vendor_chat_portal/internal/vendors/app"
	"vendor_chat_portal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler vendor account administration
type AdminHandler struct {
	VendorUC vendorapp.VendorUseCase
}

// NewAdminHandler create AdminHandler
func NewAdminHandler(vendorUC vendorapp.VendorUseCase) *AdminHandler {
	return &AdminHandler{
		VendorUC: vendorUC,
	}
}

// CreateVendor create a vendor account
// @Summary Create vendor account
// @Description Register a vendor with name, email, password and company, returns the shareable chat link
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body object true "vendor fields"
// @Success 200 {object} string "create success"
// @Failure 400 {object} string "invalid request"
// @Failure 500 {object} string "server error"
// @Router /admin/vendor [post]
func (h *AdminHandler) CreateVendor(c *fiber.Ctx) error {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Company  string `json:"company"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name, email and password are required"})
	}

	logger.Log.Info("CreateVendor request", zap.String("email", req.Email), zap.String("company", req.Company))

	vendor, err := h.VendorUC.CreateVendor(context.Background(), req.Name, req.Email, req.Password, req.Company)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Log.Info(fmt.Sprintf("VendorUC.CreateVendor %v", vendor.ID))
	return c.JSON(fiber.Map{
		"vendor_id": vendor.ID,
		"chat_link": h.VendorUC.ChatLink(vendor.ID),
		"message":   "create success",
	})
}
