package http

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/anishff444/nepwears/internal/checkout"
	"github.com/anishff444/nepwears/internal/domain"
	"github.com/anishff444/nepwears/pkg/httputil"
)

const (
	paymentSuccessPath = "/api/v1/payment/success"
	paymentFailedPath  = "/api/v1/payment/failed"
)

// paymentSuccessResponse reports Paid only once the backend has marked the
// order's payment completed; the gateway redirect alone is not enough.
type paymentSuccessResponse struct {
	Order *domain.Order `json:"order"`
	Paid  bool          `json:"paid"`
}

type paymentFailedResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Checkout handles POST /api/v1/checkout. On success the response is an HTML
// page that auto-submits the payment form to the gateway.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.checkout.Begin(r.Context(), h.state(r))
	if err != nil {
		h.fail(w, r, err, checkout.FallbackMessage)
		return
	}

	var buf bytes.Buffer
	if err := checkout.RenderRedirect(&buf, redirect); err != nil {
		h.fail(w, r, err, checkout.FallbackMessage)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// VerifyPayment handles GET /api/v1/payment/verify, the gateway's return URL.
// The browser is sent on to the success or failure page.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.VerifyPayment(r.Context(), h.state(r), r.URL.Query())
	if err != nil {
		q := url.Values{"reason": {checkout.FailureReason(err)}}
		http.Redirect(w, r, paymentFailedPath+"?"+q.Encode(), http.StatusSeeOther)
		return
	}

	q := url.Values{"orderId": {order.ID}}
	http.Redirect(w, r, paymentSuccessPath+"?"+q.Encode(), http.StatusSeeOther)
}

// PaymentSuccess handles GET /api/v1/payment/success?orderId=. A missing or
// unreadable order still renders the page, with a null order.
func (h *Handler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	if orderID == "" {
		writeData(w, http.StatusOK, paymentSuccessResponse{})
		return
	}
	id, ok := httputil.ParseID(w, orderID)
	if !ok {
		return
	}

	order, err := h.orders.Status(r.Context(), id)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to load paid order", "order_id", id, "error", err.Error())
		order = nil
	}
	writeData(w, http.StatusOK, paymentSuccessResponse{Order: order, Paid: order != nil && order.IsPaid()})
}

// PaymentFailed handles GET /api/v1/payment/failed?reason=
func (h *Handler) PaymentFailed(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = checkout.ReasonUnknown
	}
	writeData(w, http.StatusOK, paymentFailedResponse{
		Reason:  reason,
		Message: checkout.FailureMessage(reason),
	})
}
