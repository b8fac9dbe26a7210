package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// FormFields are the key/value pairs posted to the payment gateway. The
// backend may encode amounts as JSON numbers; they are kept as the literal
// text the backend sent.
type FormFields map[string]string

// UnmarshalJSON accepts string, number and boolean values.
func (f *FormFields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*f = nil
		return nil
	}

	out := make(FormFields, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("payment field %q: %w", k, err)
			}
			out[k] = s
		case bytes.Equal(v, []byte("true")) || bytes.Equal(v, []byte("false")):
			out[k] = string(v)
		case bytes.Equal(v, []byte("null")):
			out[k] = ""
		default:
			if _, err := strconv.ParseFloat(string(v), 64); err != nil {
				return fmt.Errorf("payment field %q: unsupported value %s", k, v)
			}
			out[k] = string(v)
		}
	}
	*f = out
	return nil
}

// Keys returns the field names in sorted order.
func (f FormFields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PaymentRedirect is what the backend returns when an order is created: the
// gateway URL and the form fields to post there.
type PaymentRedirect struct {
	Order       *Order     `json:"order"`
	PaymentData FormFields `json:"paymentData"`
	URL         string     `json:"esewaPaymentUrl"`
}

// Complete reports whether both the gateway URL and the form fields are
// present.
func (p *PaymentRedirect) Complete() bool {
	return p != nil && p.URL != "" && len(p.PaymentData) > 0
}
