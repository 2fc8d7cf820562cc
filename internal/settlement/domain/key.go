package domain

import "strings"

// LookupKey derives the item-price join key for a record.
//
// Rows with an order ID key on the order's last seven characters plus the SKU,
// which is how a purchased-item row finds its principal pricing row. Rows
// without an order ID fall back to settlement + posted date + transaction
// type. Rows without a SKU cannot participate in price resolution and get an
// empty key.
func LookupKey(r Record) string {
	sku := strings.TrimSpace(r.SKU)
	if sku == "" || strings.EqualFold(sku, "nan") || strings.EqualFold(sku, "null") {
		return ""
	}

	orderID := strings.TrimSpace(r.OrderID)
	if orderID == "" {
		posted := "01011900"
		if r.PostedDate != nil {
			posted = r.PostedDate.Format("02012006")
		}
		return r.SettlementID + posted + strings.ToLower(strings.TrimSpace(r.TransactionType))
	}

	return orderSuffix(orderID) + sku
}

// orderSuffix returns the last seven characters of an order ID, or the whole
// ID when it is shorter.
func orderSuffix(orderID string) string {
	if len(orderID) <= 7 {
		return orderID
	}
	return orderID[len(orderID)-7:]
}

// OrderSuffix is the exported form used by invoice numbering.
func OrderSuffix(orderID string) string {
	return orderSuffix(strings.TrimSpace(orderID))
}
