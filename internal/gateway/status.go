package gateway

import (
	"strings"
)

// Statuses the gateway (and its Indonesian-language variants) uses for a
// settled transaction.
var paidStatuses = []string{
	"PAID",
	"SUCCESS",
	"SETTLED",
	"SETTLEMENT",
	"COMPLETED",
	"DONE",
	"BERHASIL",
	"LUNAS",
}

func NormalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// LooksPaid classifies a raw gateway status. Known statuses match exactly;
// unrecognized values fall back to substring containment so composite
// variants like "SETTLEMENT_PENDING" still count as paid. The gateway owns
// the status vocabulary, tolerance here is deliberate.
func LooksPaid(status string) bool {
	s := NormalizeStatus(status)
	if s == "" {
		return false
	}
	for _, k := range paidStatuses {
		if s == k {
			return true
		}
	}
	for _, k := range paidStatuses {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// The transaction object may live under "transaction", under "data", or be
// the body itself. Strategies are tried in order, first non-empty wins.
var txStrategies = []func(map[string]any) map[string]any{
	func(body map[string]any) map[string]any { return asObject(body["transaction"]) },
	func(body map[string]any) map[string]any { return asObject(body["data"]) },
	func(body map[string]any) map[string]any { return body },
}

func ExtractTransaction(body map[string]any) map[string]any {
	for _, extract := range txStrategies {
		if tx := extract(body); len(tx) > 0 {
			return tx
		}
	}
	return nil
}

// StatusOf reads the status-like field out of a transaction object.
func StatusOf(tx map[string]any) string {
	for _, key := range []string{"status", "transaction_status", "state"} {
		if v, ok := tx[key].(string); ok && v != "" {
			return v
		}
	}
	return "UNKNOWN"
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
