package payment

import "fmt"

// Gateway result codes.
const (
	CodeSuccess         = 100
	CodeMerchantBlocked = 102
	CodeInvalidMerchant = 103
	CodeAmountTooHigh   = 104
	CodeAmountTooLow    = 105
	CodeInvalidCallback = 106
	CodeAmountMismatch  = 113
	CodeAlreadyVerified = 201
	CodeUnpaid          = 202
	CodeInvalidTrackID  = 203

	// CodeConnectionFailure is never issued by the gateway; the client
	// substitutes it for any transport-level failure so callers have a
	// single branching point.
	CodeConnectionFailure = -999
)

// Callback query parameter conventions of the hosted payment page.
const (
	CallbackSuccessOK             = "1"
	CallbackStatusAlreadyVerified = "2"
)

var resultMessages = map[int]string{
	CodeSuccess:           "Transaction was successful.",
	CodeMerchantBlocked:   "Merchant is not active.",
	CodeInvalidMerchant:   "Invalid Merchant ID.",
	CodeAmountTooHigh:     "Transaction amount is more than the maximum limit.",
	CodeAmountTooLow:      "Transaction amount is less than the minimum limit.",
	CodeInvalidCallback:   "Invalid callback URL.",
	CodeAmountMismatch:    "Transaction amount and verified amount are not equal.",
	CodeAlreadyVerified:   "Transaction has already been verified.",
	CodeUnpaid:            "Transaction was unsuccessful or unpaid.",
	CodeInvalidTrackID:    "Invalid trackId.",
	CodeConnectionFailure: "Error connecting to the server.",
}

// Translate maps a gateway result code to a user-facing message.
// Unknown codes keep the raw value in the message so operators can
// look them up; this function never fails.
func Translate(code int) string {
	if msg, ok := resultMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Undefined error, code=%d", code)
}
