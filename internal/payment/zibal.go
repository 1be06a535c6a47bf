package payment

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"paybridge/internal/config"
	"paybridge/internal/pkg/httpclient"
)

// ZibalGateway implements the Gateway interface for Zibal.
type ZibalGateway struct {
	merchant    string
	requestURL  string
	verifyURL   string
	startPayURL string
	client      *httpclient.Client
	logger      *zap.Logger
}

func NewZibalGateway(cfg config.GatewayConfig, logger *zap.Logger) *ZibalGateway {
	return &ZibalGateway{
		merchant:    cfg.Merchant,
		requestURL:  cfg.RequestURL,
		verifyURL:   cfg.VerifyURL,
		startPayURL: cfg.StartPayURL,
		client:      httpclient.New().WithTimeout(30 * time.Second),
		logger:      logger,
	}
}

func (z *ZibalGateway) Name() string {
	return "zibal"
}

func (z *ZibalGateway) PaymentURL(trackID string) string {
	return z.startPayURL + trackID
}

func (z *ZibalGateway) CreatePayment(ctx context.Context, amount int64, callbackURL, description, mobile string) Result {
	body := map[string]interface{}{
		"merchant":    z.merchant,
		"amount":      amount,
		"callbackUrl": callbackURL,
		"description": description,
		"mobile":      mobile,
	}

	reply := z.send(z.requestURL, body)
	if reply == nil {
		return Result{Code: CodeConnectionFailure}
	}

	return Result{
		Code:    intValue(reply["result"]),
		TrackID: stringValue(reply["trackId"]),
	}
}

func (z *ZibalGateway) VerifyPayment(ctx context.Context, trackID string) Result {
	body := map[string]interface{}{
		"merchant": z.merchant,
		"trackId":  trackID,
	}

	reply := z.send(z.verifyURL, body)
	if reply == nil {
		return Result{Code: CodeConnectionFailure}
	}

	return Result{
		Code:      intValue(reply["result"]),
		RefNumber: stringValue(reply["refNumber"]),
	}
}

// send posts a JSON payload and decodes the reply. A nil return means
// the exchange failed at the transport level; the failure is logged
// here and never propagated as an error.
func (z *ZibalGateway) send(endpoint string, body map[string]interface{}) map[string]interface{} {
	bodyJSON, _ := json.Marshal(body)
	resp, err := z.client.Post(endpoint, bodyJSON)
	if err != nil {
		z.logger.Error("gateway request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil
	}

	var reply map[string]interface{}
	if err := json.Unmarshal(resp, &reply); err != nil {
		z.logger.Error("gateway response parse error",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil
	}
	return reply
}

// Zibal returns trackId and refNumber as JSON numbers; older sandbox
// replies carry them as strings. Both forms are accepted.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func intValue(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	case json.Number:
		n, _ := t.Int64()
		return int(n)
	default:
		return 0
	}
}
