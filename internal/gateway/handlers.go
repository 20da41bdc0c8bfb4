package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/brewhub/payment-gateway/internal/backend"
	"github.com/brewhub/payment-gateway/internal/common"
	"github.com/brewhub/payment-gateway/internal/obs"
)

// StatusPending is the only payment status the gateway ever writes. Every
// later transition belongs to the backend.
const StatusPending = "Pending"

// Handler exposes the payment gateway operations: initiate a payment, poll
// its status, and issue a refund. Each operation runs the same admission
// chain before touching the backend.
type Handler struct {
	Backend  *backend.Client
	Logger   zerolog.Logger
	Validate *Validator
}

// opDefaults carries the fallback status and message used when the backend
// fails without providing its own. The asymmetric defaults (500 for
// mutations, 404 for status lookups) are part of the public contract.
type opDefaults struct {
	op      string
	status  int
	message string
}

var (
	processOp = opDefaults{op: "process payment", status: http.StatusInternalServerError, message: "Error processing payment"}
	statusOp  = opDefaults{op: "payment status", status: http.StatusNotFound, message: "Payment not found"}
	refundOp  = opDefaults{op: "refund payment", status: http.StatusInternalServerError, message: "Error processing refund"}
)

type failureBody struct {
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
}

type processRequest struct {
	OrderID int64    `json:"orderId" validate:"required,gt=0"`
	Amount  *float64 `json:"amount" validate:"required,gte=0"`
}

type refundRequest struct {
	Amount *float64 `json:"amount" validate:"required,gte=0"`
}

// Process initiates a payment for an order owned by the caller.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	decodeErr := json.NewDecoder(r.Body).Decode(&req)
	authorization := r.Header.Get("Authorization")

	var caller common.Caller
	ok := h.admit(w, r, processOp,
		h.validated(decodeErr, &req),
		identified(&caller),
		h.orderOwned(&caller, authorization, req.OrderID, processOp),
	)
	if !ok {
		return
	}

	payment, err := h.Backend.ProcessPayment(r.Context(), authorization, backend.PaymentRequest{
		OrderID: req.OrderID,
		Amount:  *req.Amount,
		Status:  StatusPending,
	})
	if err != nil {
		h.Logger.Error().Err(err).Str("op", processOp.op).Int64("order_id", req.OrderID).Int64("caller_id", caller.ID).Msg("payment submission failed")
		obs.ObservePaymentOp(processOp.op, "backend_error")
		rej := h.backendRejection(processOp, err)
		common.JSON(w, rej.status, rej.body)
		return
	}

	obs.ObservePaymentOp(processOp.op, "accepted")
	common.JSON(w, http.StatusCreated, struct {
		Message string          `json:"message"`
		Payment json.RawMessage `json:"payment"`
	}{Message: "Payment processed successfully", Payment: payment})
}

// Status reports the backend payment resource verbatim for a payment whose
// order the caller owns.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	authorization := r.Header.Get("Authorization")
	paymentID := chi.URLParam(r, "paymentId")

	var caller common.Caller
	var payment backend.Payment
	ok := h.admit(w, r, statusOp,
		identified(&caller),
		h.paymentOwned(&caller, authorization, paymentID, &payment, statusOp),
	)
	if !ok {
		return
	}

	obs.ObservePaymentOp(statusOp.op, "accepted")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payment.Raw)
}

// Refund issues a refund for a payment whose order the caller owns.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	decodeErr := json.NewDecoder(r.Body).Decode(&req)
	authorization := r.Header.Get("Authorization")
	paymentID := chi.URLParam(r, "paymentId")

	var caller common.Caller
	var payment backend.Payment
	ok := h.admit(w, r, refundOp,
		h.validated(decodeErr, &req),
		identified(&caller),
		h.paymentOwned(&caller, authorization, paymentID, &payment, refundOp),
	)
	if !ok {
		return
	}

	refund, err := h.Backend.RefundPayment(r.Context(), authorization, paymentID, backend.RefundRequest{
		Amount: *req.Amount,
	})
	if err != nil {
		h.Logger.Error().Err(err).Str("op", refundOp.op).Str("payment_id", paymentID).Int64("caller_id", caller.ID).Msg("refund submission failed")
		obs.ObservePaymentOp(refundOp.op, "backend_error")
		rej := h.backendRejection(refundOp, err)
		common.JSON(w, rej.status, rej.body)
		return
	}

	obs.ObservePaymentOp(refundOp.op, "accepted")
	common.JSON(w, http.StatusOK, struct {
		Message string          `json:"message"`
		Refund  json.RawMessage `json:"refund"`
	}{Message: "Refund processed successfully", Refund: refund})
}
