package payment

import "context"

// Result is the decoded gateway reply for both initiation and
// verification. Transport failures surface as Code ==
// CodeConnectionFailure instead of an error, so both call sites share
// one failure branch.
type Result struct {
	Code      int    `json:"code"`
	TrackID   string `json:"track_id,omitempty"`
	RefNumber string `json:"ref_number,omitempty"`
}

// OK reports whether the gateway accepted the call.
func (r Result) OK() bool {
	return r.Code == CodeSuccess
}

// Message returns the user-facing text for the result code.
func (r Result) Message() string {
	return Translate(r.Code)
}

// Gateway defines the interface for the hosted payment gateway.
type Gateway interface {
	// Name returns the gateway identifier.
	Name() string

	// PaymentURL builds the hosted payment page address for a trackId.
	PaymentURL(trackID string) string

	// CreatePayment registers a pending payment. amount is in Rials.
	CreatePayment(ctx context.Context, amount int64, callbackURL, description, mobile string) Result

	// VerifyPayment confirms a completed payment after the callback.
	VerifyPayment(ctx context.Context, trackID string) Result
}
