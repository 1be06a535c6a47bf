package payment

import "strings"

// RialAmount converts an order total to the Rial amount the gateway
// expects. Shops priced in Toman (IRT) carry one tenth of the Rial
// value, so the total is scaled up by ten exactly once per initiation.
// Every other currency passes through unchanged.
func RialAmount(total int64, currency string) int64 {
	switch strings.ToLower(currency) {
	case "irt", "toman":
		return total * 10
	default:
		return total
	}
}
