package gateway

import (
	"errors"
	"net/http"

	"github.com/brewhub/payment-gateway/internal/backend"
	"github.com/brewhub/payment-gateway/internal/common"
	"github.com/brewhub/payment-gateway/internal/obs"
)

// A guard is one gate in an operation's fixed admission order. Guards run
// strictly in sequence and the first rejection is written to the caller;
// nothing after it executes. The order is part of the protocol: structural
// validation, then caller identity, then ownership, and only past the full
// chain may a mutating backend call be issued. Composing an operation out
// of guards keeps that ordering structural rather than conventional.
type guard func(r *http.Request) *rejection

type rejection struct {
	status int
	body   any
}

// admit evaluates guards in order, writing the first rejection. It reports
// whether the request passed every gate.
func (h *Handler) admit(w http.ResponseWriter, r *http.Request, d opDefaults, guards ...guard) bool {
	for _, g := range guards {
		if rej := g(r); rej != nil {
			obs.ObservePaymentOp(d.op, admissionResult(rej.status))
			common.JSON(w, rej.status, rej.body)
			return false
		}
	}
	return true
}

func admissionResult(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusForbidden:
		return "unauthorized"
	default:
		return "backend_error"
	}
}

func unauthorized() *rejection {
	return &rejection{status: http.StatusForbidden, body: map[string]string{"message": "Unauthorized"}}
}

// validated rejects with the ordered violation list when the body failed
// structural validation. decodeErr marks a body that could not be decoded
// into the request type at all.
func (h *Handler) validated(decodeErr error, req any) guard {
	return func(*http.Request) *rejection {
		if decodeErr != nil {
			return &rejection{status: http.StatusBadRequest, body: map[string]any{
				"errors": []Violation{{Message: "request body must be valid JSON"}},
			}}
		}
		if violations := h.Validate.Check(req); len(violations) > 0 {
			return &rejection{status: http.StatusBadRequest, body: map[string]any{"errors": violations}}
		}
		return nil
	}
}

// identified requires an authenticated caller on the request context and
// stores it for later gates.
func identified(caller *common.Caller) guard {
	return func(r *http.Request) *rejection {
		c, ok := common.CallerFrom(r.Context())
		if !ok {
			return unauthorized()
		}
		*caller = c
		return nil
	}
}

// orderOwned fetches the order resource and verifies the caller owns it.
func (h *Handler) orderOwned(caller *common.Caller, authorization string, orderID int64, d opDefaults) guard {
	return func(r *http.Request) *rejection {
		order, err := h.Backend.GetOrder(r.Context(), authorization, orderID)
		if err != nil {
			h.Logger.Error().Err(err).Str("op", d.op).Int64("order_id", orderID).Msg("order lookup failed")
			return h.backendRejection(d, err)
		}
		if order.UserID != caller.ID {
			return unauthorized()
		}
		return nil
	}
}

// paymentOwned resolves the payment, then the order it belongs to, and
// verifies the caller owns that order. The fetched payment is stored for
// the operation body.
func (h *Handler) paymentOwned(caller *common.Caller, authorization, paymentID string, payment *backend.Payment, d opDefaults) guard {
	return func(r *http.Request) *rejection {
		p, err := h.Backend.GetPayment(r.Context(), authorization, paymentID)
		if err != nil {
			h.Logger.Error().Err(err).Str("op", d.op).Str("payment_id", paymentID).Msg("payment lookup failed")
			return h.backendRejection(d, err)
		}
		*payment = p
		order, err := h.Backend.GetOrder(r.Context(), authorization, p.OrderID)
		if err != nil {
			h.Logger.Error().Err(err).Str("op", d.op).Str("payment_id", paymentID).Int64("order_id", p.OrderID).Msg("order lookup failed")
			return h.backendRejection(d, err)
		}
		if order.UserID != caller.ID {
			return unauthorized()
		}
		return nil
	}
}

// backendRejection translates a failed backend call into the operation's
// caller-facing error shape. A backend that responded keeps its status code
// and body fields; a backend that never responded falls back to the
// operation defaults with the transport failure as detail.
func (h *Handler) backendRejection(d opDefaults, err error) *rejection {
	var be *backend.Error
	if errors.As(err, &be) {
		if be.Responded() {
			message := be.Message
			if message == "" {
				message = d.message
			}
			body := failureBody{Message: message}
			if len(be.Errors) > 0 {
				body.Error = be.Errors
			}
			return &rejection{status: be.Status, body: body}
		}
		return &rejection{status: d.status, body: failureBody{Message: d.message, Error: be.Error()}}
	}
	// contract violations and anything else unexpected
	return &rejection{status: d.status, body: failureBody{Message: d.message, Error: err.Error()}}
}
