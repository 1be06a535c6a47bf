package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paybridge/internal/config"
	"paybridge/internal/models"
	"paybridge/internal/payment"
	"paybridge/internal/pkg/telegram"
)

// PaymentHandler drives payment initiation and the gateway callback.
type PaymentHandler struct {
	store   OrderStore
	gateway payment.Gateway
	botAPI  *telegram.BotAPI
	cfg     *config.Config
	logger  *zap.Logger
}

// NewPaymentHandler creates a new payment handler. botAPI may be nil
// when operator reports are not configured.
func NewPaymentHandler(
	store OrderStore,
	gateway payment.Gateway,
	botAPI *telegram.BotAPI,
	cfg *config.Config,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		store:   store,
		gateway: gateway,
		botAPI:  botAPI,
		cfg:     cfg,
		logger:  logger,
	}
}

// Pay registers a pending payment with the gateway and redirects the
// payer to the hosted payment page. On any gateway error the order is
// left untouched so the customer can retry from checkout.
func (h *PaymentHandler) Pay(c echo.Context) error {
	orderID, err := parseOrderID(c.Param("order_id"))
	if err != nil {
		return h.redirectWithNotice(c, h.cfg.Store.CheckoutURL, "error", "Invalid order identifier.")
	}

	order, err := h.store.FindByID(orderID)
	if err != nil {
		return h.redirectWithNotice(c, h.cfg.Store.CheckoutURL, "error", "Order not found.")
	}

	amount := payment.RialAmount(order.Total, order.Currency)
	description := fmt.Sprintf("%s - order %s", h.cfg.Gateway.Title, order.Number)
	if h.cfg.Gateway.Description != "" {
		description = fmt.Sprintf("%s - order %s", h.cfg.Gateway.Description, order.Number)
	}

	result := h.gateway.CreatePayment(
		c.Request().Context(),
		amount,
		h.callbackURL(order.ID),
		description,
		order.Phone,
	)
	if !result.OK() {
		h.logger.Error("payment initiation rejected",
			zap.Uint("order_id", order.ID),
			zap.Int("code", result.Code))
		return h.redirectWithNotice(c, h.cfg.Store.CheckoutURL, "error", result.Message())
	}

	if err := h.store.SetTrackID(order.ID, result.TrackID); err != nil {
		h.logger.Warn("failed to record trackId",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
	}

	return c.Redirect(http.StatusFound, h.gateway.PaymentURL(result.TrackID))
}

// callbackURL embeds the order identifier so the callback can recover
// which order is being completed; the gateway is stateless across the
// two calls.
func (h *PaymentHandler) callbackURL(orderID uint) string {
	u, err := url.Parse(h.cfg.Gateway.CallbackURL)
	if err != nil {
		return h.cfg.Gateway.CallbackURL
	}
	q := u.Query()
	q.Set("order_id", strconv.FormatUint(uint64(orderID), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// redirectWithNotice sends the payer back to a shop page with the
// notice carried as query parameters for the shop to display.
func (h *PaymentHandler) redirectWithNotice(c echo.Context, baseURL, kind, message string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return c.String(http.StatusBadGateway, message)
	}
	q := u.Query()
	q.Set("notice_type", kind)
	q.Set("notice", message)
	u.RawQuery = q.Encode()
	return c.Redirect(http.StatusFound, u.String())
}

// reportPayment dispatches the operator payment report in the
// background. Best effort; the payer's redirect never waits on
// Telegram.
func (h *PaymentHandler) reportPayment(order *models.Order, refNumber string) {
	if h.botAPI == nil || h.cfg.Notify.ChatID == "" {
		return
	}

	text := fmt.Sprintf(
		"💵 New payment\n\nOrder: %s\nAmount: %d %s\nRef number: %s",
		order.Number, order.Total, order.Currency, refNumber,
	)
	go func() {
		if _, err := h.botAPI.SendMessage(h.cfg.Notify.ChatID, text); err != nil {
			h.logger.Warn("payment report failed",
				zap.String("order", order.Number),
				zap.Error(err))
		}
	}()
}

func parseOrderID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid order id %q", raw)
	}
	return uint(id), nil
}
