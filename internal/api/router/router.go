package router

import (
	"vendor_chat_portal/internal/api/handlers"
	"vendor_chat_portal/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// RegisterRoutes register the portal REST routes
// @title Vendor Chat Portal API
// @version 1.0
// @description API documentation for Vendor Chat Portal
// @host localhost:8080
// @BasePath /
func RegisterRoutes(app *fiber.App,
	adminHandler *handlers.AdminHandler,
	vendorHandler *handlers.VendorHandler,
	chatHandler *handlers.ChatHandler,
) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	app.Post("/admin/vendor", adminHandler.CreateVendor)

	vendorRoutes := app.Group("/vendor")
	vendorRoutes.Post("/login", vendorHandler.Login)

	vendorRoutes.Use(middlewares.JWTMiddleware())
	vendorRoutes.Post("/logout", vendorHandler.Logout)
	vendorRoutes.Get("/conversations", vendorHandler.Conversations)
	vendorRoutes.Get("/link", vendorHandler.ChatLink)

	chatRoutes := app.Group("/chat")
	chatRoutes.Get("/:vendorID", chatHandler.VendorInfo)
	chatRoutes.Post("/:vendorID/join", chatHandler.Join)
	chatRoutes.Post("/:vendorID/leave", middlewares.JWTMiddleware(), chatHandler.Leave)

	app.Get("/session", middlewares.JWTMiddleware(), vendorHandler.Session)
}
