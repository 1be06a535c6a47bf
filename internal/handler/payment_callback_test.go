package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paybridge/internal/config"
	"paybridge/internal/handler"
	"paybridge/internal/models"
	"paybridge/internal/payment"
	"paybridge/internal/pkg/telegram"
)

const (
	checkoutURL = "https://shop.example/checkout"
	receiptURL  = "https://shop.example/order-received"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Gateway: config.GatewayConfig{
			Merchant:    "test-merchant",
			Title:       "Zibal",
			CallbackURL: "https://bridge.example/payment/callback",
		},
		Store: config.StoreConfig{
			CheckoutURL: checkoutURL,
			ReceiptURL:  receiptURL,
		},
	}
}

func newTestHandler(store handler.OrderStore, gw payment.Gateway) *handler.PaymentHandler {
	return handler.NewPaymentHandler(store, gw, nil, newTestConfig(), zap.NewNop())
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:       7,
		Number:   "1007",
		Total:    150000,
		Currency: "IRT",
		Phone:    "09120000000",
		Status:   models.OrderStatusPending,
	}
}

func doCallback(t *testing.T, h *handler.PaymentHandler, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/payment/callback?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.Callback(c))
	return rec
}

// redirectTarget parses the Location header of a redirect response.
func redirectTarget(t *testing.T, rec *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code)
	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return u
}

func callbackQuery(trackID, success, status, orderID string) url.Values {
	q := url.Values{}
	if trackID != "" {
		q.Set("trackId", trackID)
	}
	if success != "" {
		q.Set("success", success)
	}
	if status != "" {
		q.Set("status", status)
	}
	if orderID != "" {
		q.Set("order_id", orderID)
	}
	return q
}

func TestCallback_IncompleteParameters(t *testing.T) {
	cases := map[string]url.Values{
		"missing trackId":  callbackQuery("", "1", "1", "7"),
		"missing success":  callbackQuery("abc123", "", "1", "7"),
		"missing order_id": callbackQuery("abc123", "1", "1", ""),
		"everything empty": {},
	}

	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMockOrderStore(pendingOrder())
			gw := &mockGateway{}
			rec := doCallback(t, newTestHandler(store, gw), q)

			target := redirectTarget(t, rec)
			assert.True(t, hasPrefix(target, checkoutURL), "redirects to checkout, got %s", target)
			assert.Contains(t, target.Query().Get("notice"), "Incomplete return information")
			assert.Zero(t, gw.verifyCalls, "verify endpoint must not be called")
			assert.False(t, store.mutated(), "order state must not change")
		})
	}
}

func TestCallback_OrderNotFound(t *testing.T) {
	t.Run("unknown order id", func(t *testing.T) {
		store := newMockOrderStore()
		gw := &mockGateway{}
		rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "1", "42"))

		target := redirectTarget(t, rec)
		assert.True(t, hasPrefix(target, checkoutURL))
		assert.Equal(t, "Order not found.", target.Query().Get("notice"))
		assert.Zero(t, gw.verifyCalls)
		assert.False(t, store.mutated())
	})

	t.Run("non-numeric order id", func(t *testing.T) {
		store := newMockOrderStore(pendingOrder())
		gw := &mockGateway{}
		rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "1", "seven"))

		target := redirectTarget(t, rec)
		assert.True(t, hasPrefix(target, checkoutURL))
		assert.Zero(t, gw.verifyCalls)
		assert.False(t, store.mutated())
	})
}

func TestCallback_CancelledByUser(t *testing.T) {
	store := newMockOrderStore(pendingOrder())
	gw := &mockGateway{}
	rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "0", "3", "7"))

	target := redirectTarget(t, rec)
	assert.True(t, hasPrefix(target, checkoutURL))
	assert.Equal(t, models.OrderStatusCancelled, store.statusChanges[7])
	assert.Contains(t, store.notes[7], "payment cancelled by user")
	assert.Zero(t, gw.verifyCalls, "cancellation must not reach the verify endpoint")
}

func TestCallback_AlreadyVerifiedReplay(t *testing.T) {
	store := newMockOrderStore(pendingOrder())
	gw := &mockGateway{}
	rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "2", "7"))

	target := redirectTarget(t, rec)
	assert.True(t, hasPrefix(target, receiptURL), "replay redirects to the receipt page")
	assert.Zero(t, gw.verifyCalls, "replay must not re-verify")
	assert.False(t, store.mutated())
}

func TestCallback_VerifiedSuccess(t *testing.T) {
	store := newMockOrderStore(pendingOrder())
	gw := &mockGateway{
		VerifyPaymentFn: func(ctx context.Context, trackID string) payment.Result {
			assert.Equal(t, "abc123", trackID)
			return payment.Result{Code: payment.CodeSuccess, RefNumber: "987654"}
		},
	}
	rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "1", "7"))

	target := redirectTarget(t, rec)
	assert.True(t, hasPrefix(target, receiptURL))
	assert.Equal(t, 1, gw.verifyCalls)
	assert.Equal(t, models.OrderStatusCompleted, store.statusChanges[7])
	assert.Equal(t, "987654", store.paidRefs[7])

	require.Len(t, store.notes[7], 1)
	assert.Contains(t, store.notes[7][0], "abc123")
	assert.Contains(t, store.notes[7][0], "987654")
}

func TestCallback_VerifiedFailure(t *testing.T) {
	t.Run("amount mismatch", func(t *testing.T) {
		store := newMockOrderStore(pendingOrder())
		gw := &mockGateway{
			VerifyPaymentFn: func(ctx context.Context, trackID string) payment.Result {
				return payment.Result{Code: payment.CodeAmountMismatch}
			},
		}
		rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "1", "7"))

		target := redirectTarget(t, rec)
		assert.True(t, hasPrefix(target, checkoutURL), "failures go back to checkout")
		assert.Equal(t, models.OrderStatusFailed, store.statusChanges[7])
		assert.Contains(t, store.notes[7], "Transaction amount and verified amount are not equal.")
		assert.Contains(t, target.Query().Get("notice"), "not equal")
	})

	t.Run("invalid merchant", func(t *testing.T) {
		store := newMockOrderStore(pendingOrder())
		gw := &mockGateway{
			VerifyPaymentFn: func(ctx context.Context, trackID string) payment.Result {
				return payment.Result{Code: payment.CodeInvalidMerchant}
			},
		}
		doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "1", "7"))

		assert.Equal(t, models.OrderStatusFailed, store.statusChanges[7])
		assert.Contains(t, store.notes[7], "Invalid Merchant ID.")
	})

	t.Run("connection failure during verify", func(t *testing.T) {
		store := newMockOrderStore(pendingOrder())
		gw := &mockGateway{
			VerifyPaymentFn: func(ctx context.Context, trackID string) payment.Result {
				return payment.Result{Code: payment.CodeConnectionFailure}
			},
		}
		rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "1", "7"))

		target := redirectTarget(t, rec)
		assert.True(t, hasPrefix(target, checkoutURL))
		assert.Equal(t, models.OrderStatusFailed, store.statusChanges[7])
		assert.Contains(t, store.notes[7], "Error connecting to the server.")
	})

	t.Run("already verified at the gateway routes through failure", func(t *testing.T) {
		store := newMockOrderStore(pendingOrder())
		gw := &mockGateway{
			VerifyPaymentFn: func(ctx context.Context, trackID string) payment.Result {
				return payment.Result{Code: payment.CodeAlreadyVerified}
			},
		}
		rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "1", "7"))

		target := redirectTarget(t, rec)
		assert.True(t, hasPrefix(target, checkoutURL))
		assert.Equal(t, models.OrderStatusFailed, store.statusChanges[7])
		assert.Contains(t, store.notes[7], "Transaction has already been verified.")
	})
}

func TestCallback_MissingStatusProceedsToVerify(t *testing.T) {
	// A missing status flag is treated as "not already verified", not
	// as an invalid request.
	store := newMockOrderStore(pendingOrder())
	gw := &mockGateway{
		VerifyPaymentFn: func(ctx context.Context, trackID string) payment.Result {
			return payment.Result{Code: payment.CodeSuccess, RefNumber: "555"}
		},
	}
	rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "1", "", "7"))

	target := redirectTarget(t, rec)
	assert.True(t, hasPrefix(target, receiptURL))
	assert.Equal(t, 1, gw.verifyCalls)
	assert.Equal(t, models.OrderStatusCompleted, store.statusChanges[7])
}

func TestCallback_StaleCancelAfterCompletion(t *testing.T) {
	// A success=0 callback arriving after the order was already paid
	// must not knock it back to cancelled.
	order := pendingOrder()
	order.Status = models.OrderStatusCompleted
	store := newMockOrderStore(order)
	gw := &mockGateway{}
	rec := doCallback(t, newTestHandler(store, gw), callbackQuery("abc123", "0", "3", "7"))

	target := redirectTarget(t, rec)
	assert.True(t, hasPrefix(target, checkoutURL))
	assert.Zero(t, gw.verifyCalls)
	assert.False(t, store.mutated(), "a completed order must stay completed")
}

func TestCallback_OperatorReportDoesNotDelayRedirect(t *testing.T) {
	// The payment report to the operator chat is best effort and runs
	// in the background; the payer gets their receipt redirect even
	// when the Bot API is slow.
	slowBotAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer slowBotAPI.Close()

	cfg := newTestConfig()
	cfg.Notify.BotToken = "test-token"
	cfg.Notify.ChatID = "-1001"

	store := newMockOrderStore(pendingOrder())
	gw := &mockGateway{}
	h := handler.NewPaymentHandler(
		store, gw,
		telegram.NewBotAPIWithEndpoint(cfg.Notify.BotToken, slowBotAPI.URL),
		cfg, zap.NewNop(),
	)

	start := time.Now()
	rec := doCallback(t, h, callbackQuery("abc123", "1", "1", "7"))
	elapsed := time.Since(start)

	target := redirectTarget(t, rec)
	assert.True(t, hasPrefix(target, receiptURL))
	assert.Equal(t, models.OrderStatusCompleted, store.statusChanges[7])
	assert.Less(t, elapsed, 500*time.Millisecond, "redirect must not wait on the report")
}

func hasPrefix(target *url.URL, base string) bool {
	b, err := url.Parse(base)
	if err != nil {
		return false
	}
	return target.Scheme == b.Scheme && target.Host == b.Host && target.Path == b.Path
}
