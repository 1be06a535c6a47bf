package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paybridge/internal/config"
	"paybridge/internal/handler"
	"paybridge/internal/middleware"
	"paybridge/internal/payment"
	"paybridge/internal/pkg/telegram"
	"paybridge/internal/repository"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	gateway payment.Gateway,
	botAPI *telegram.BotAPI,
	cfg *config.Config,
	deduper middleware.CallbackDeduper,
	logger *zap.Logger,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	orders := repository.NewOrderRepository(db)
	paymentHandler := handler.NewPaymentHandler(orders, gateway, botAPI, cfg, logger)

	// Payment routes
	paymentGroup := e.Group("/payment")
	paymentGroup.GET("/pay/:order_id", paymentHandler.Pay)
	paymentGroup.GET("/callback", paymentHandler.Callback,
		middleware.CallbackDedup(deduper, cfg.Store.ReceiptURL))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
