package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LineItem is one entry of a cart or order. The backend populates productId
// with the product document; when it does not, only ProductID is set and
// Product is nil.
type LineItem struct {
	ProductID string   `json:"-"`
	Product   *Product `json:"-"`
	Quantity  int      `json:"quantity"`
}

type lineItemJSON struct {
	ProductID json.RawMessage `json:"productId"`
	Quantity  int             `json:"quantity"`
}

// UnmarshalJSON accepts productId as a populated object, a bare id string or
// null.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw lineItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*li = LineItem{Quantity: raw.Quantity}

	ref := bytes.TrimSpace(raw.ProductID)
	switch {
	case len(ref) == 0 || bytes.Equal(ref, []byte("null")):
	case ref[0] == '"':
		if err := json.Unmarshal(ref, &li.ProductID); err != nil {
			return fmt.Errorf("line item productId: %w", err)
		}
	case ref[0] == '{':
		var p Product
		if err := json.Unmarshal(ref, &p); err != nil {
			return fmt.Errorf("line item productId: %w", err)
		}
		li.Product = &p
		li.ProductID = p.ID
	default:
		return fmt.Errorf("line item productId: unexpected JSON %s", ref)
	}
	return nil
}

// MarshalJSON writes the populated product when present, the bare id
// otherwise.
func (li LineItem) MarshalJSON() ([]byte, error) {
	var ref any
	switch {
	case li.Product != nil:
		ref = li.Product
	case li.ProductID != "":
		ref = li.ProductID
	}
	return json.Marshal(struct {
		ProductID any `json:"productId"`
		Quantity  int `json:"quantity"`
	}{ref, li.Quantity})
}

// Price is the unit price, or 0 when the product was not populated.
func (li LineItem) Price() float64 {
	if li.Product == nil {
		return 0
	}
	return li.Product.Price
}

// Subtotal is Price times Quantity.
func (li LineItem) Subtotal() float64 {
	return li.Price() * float64(li.Quantity)
}

// Cart is the server-side cart document. It is only ever replaced wholesale.
type Cart struct {
	Products []LineItem `json:"products"`
}

// Total sums price times quantity over items. A nil or empty slice totals 0.
// No rounding is applied.
func Total(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount sums the quantities of items.
func ItemCount(items []LineItem) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
