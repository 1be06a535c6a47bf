package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paybridge/internal/models"
	"paybridge/internal/payment"
)

// Callback handles the payer's return from the hosted payment page.
//
// Every branch ends in a redirect: validation failures and
// cancellations go back to checkout, confirmed payments go to the
// receipt page. The order is only marked paid after a server-side
// verify call; the query parameters alone are never trusted.
func (h *PaymentHandler) Callback(c echo.Context) error {
	trackID := c.QueryParam("trackId")
	success := c.QueryParam("success")
	status := c.QueryParam("status")
	orderIDRaw := c.QueryParam("order_id")

	if trackID == "" || success == "" || orderIDRaw == "" {
		return h.redirectWithNotice(c, h.cfg.Store.CheckoutURL, "error",
			"Incomplete return information from the payment gateway.")
	}

	orderID, err := parseOrderID(orderIDRaw)
	if err != nil {
		return h.redirectWithNotice(c, h.cfg.Store.CheckoutURL, "error", "Order not found.")
	}

	order, err := h.store.FindByID(orderID)
	if err != nil {
		return h.redirectWithNotice(c, h.cfg.Store.CheckoutURL, "error", "Order not found.")
	}

	// Payer backed out on the hosted page. The order stays reusable
	// for a fresh initiation. Only a pending order may be cancelled;
	// a stale replay must not clobber a completed payment.
	if success != payment.CallbackSuccessOK {
		if order.Status == models.OrderStatusPending {
			if err := h.store.UpdateStatus(order.ID, models.OrderStatusCancelled, "payment cancelled by user"); err != nil {
				h.logger.Error("failed to cancel order",
					zap.Uint("order_id", order.ID),
					zap.Error(err))
			}
		}
		return h.redirectWithNotice(c, h.cfg.Store.CheckoutURL, "notice", "Payment was cancelled.")
	}

	// Duplicate delivery of a callback that already verified, e.g. a
	// browser back-button replay. Treated as success without another
	// verify call.
	if status == payment.CallbackStatusAlreadyVerified {
		return h.redirectWithNotice(c, h.cfg.Store.ReceiptURL, "success",
			"Payment was already confirmed.")
	}

	result := h.gateway.VerifyPayment(c.Request().Context(), trackID)
	if result.OK() {
		if err := h.store.MarkPaid(order.ID, result.RefNumber); err != nil {
			h.logger.Error("failed to mark order paid",
				zap.Uint("order_id", order.ID),
				zap.Error(err))
		}
		note := fmt.Sprintf("Payment confirmed. trackId: %s, refNumber: %s", trackID, result.RefNumber)
		if err := h.store.AddNote(order.ID, note); err != nil {
			h.logger.Warn("failed to add payment note",
				zap.Uint("order_id", order.ID),
				zap.Error(err))
		}

		h.reportPayment(order, result.RefNumber)

		return h.redirectWithNotice(c, h.cfg.Store.ReceiptURL, "success",
			"Payment was successful. Thank you!")
	}

	message := result.Message()
	h.logger.Error("payment verification failed",
		zap.Uint("order_id", order.ID),
		zap.String("track_id", trackID),
		zap.Int("code", result.Code))
	if err := h.store.UpdateStatus(order.ID, models.OrderStatusFailed, message); err != nil {
		h.logger.Error("failed to mark order failed",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
	}
	return h.redirectWithNotice(c, h.cfg.Store.CheckoutURL, "error", message)
}
