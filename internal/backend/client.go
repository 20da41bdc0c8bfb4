package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brewhub/payment-gateway/internal/obs"
)

// Order is the slice of the backend order resource the gateway reads. Only
// the owning user matters here; everything else stays with the backend.
type Order struct {
	UserID int64
}

// Payment is the backend payment resource. Raw preserves the exact response
// body so status lookups can relay it verbatim.
type Payment struct {
	ID      int64
	OrderID int64
	Amount  float64
	Status  string
	Raw     json.RawMessage
}

// PaymentRequest is the payload submitted to the backend's process endpoint.
// Status is always "Pending"; the backend owns every later transition.
type PaymentRequest struct {
	OrderID int64   `json:"orderId"`
	Amount  float64 `json:"amount"`
	Status  string  `json:"status"`
}

// RefundRequest is the payload submitted to the backend's refund endpoint.
type RefundRequest struct {
	Amount float64 `json:"amount"`
}

// Client talks to the order/payment backend. The Authorization header value
// is an explicit argument on every call: the gateway forwards the caller's
// credential verbatim and never derives one of its own.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  zerolog.Logger
}

// NewHTTPClient returns the transport used for backend calls, instrumented
// for tracing and bounded by the configured timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// GetOrder fetches the order resource and returns its owning user.
func (c *Client) GetOrder(ctx context.Context, authorization string, orderID int64) (Order, error) {
	const op = "get order"
	body, err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/api/order/%d", orderID), authorization, nil)
	if err != nil {
		return Order{}, err
	}
	var decoded struct {
		UserID *int64 `json:"userId"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.UserID == nil {
		return Order{}, &ContractError{Op: op, Field: "userId"}
	}
	return Order{UserID: *decoded.UserID}, nil
}

// GetPayment fetches the payment resource, keeping the raw body for relay.
func (c *Client) GetPayment(ctx context.Context, authorization, paymentID string) (Payment, error) {
	const op = "get payment"
	body, err := c.do(ctx, op, http.MethodGet, "/api/payment/"+url.PathEscape(paymentID), authorization, nil)
	if err != nil {
		return Payment{}, err
	}
	var decoded struct {
		ID      *int64   `json:"id"`
		OrderID *int64   `json:"orderId"`
		Amount  *float64 `json:"amount"`
		Status  string   `json:"status"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.OrderID == nil {
		return Payment{}, &ContractError{Op: op, Field: "orderId"}
	}
	payment := Payment{OrderID: *decoded.OrderID, Status: decoded.Status, Raw: body}
	if decoded.ID != nil {
		payment.ID = *decoded.ID
	}
	if decoded.Amount != nil {
		payment.Amount = *decoded.Amount
	}
	return payment, nil
}

// ProcessPayment submits a new payment and returns the backend body verbatim.
func (c *Client) ProcessPayment(ctx context.Context, authorization string, req PaymentRequest) (json.RawMessage, error) {
	return c.do(ctx, "process payment", http.MethodPost, "/api/payment/process", authorization, req)
}

// RefundPayment submits a refund and returns the backend body verbatim.
func (c *Client) RefundPayment(ctx context.Context, authorization, paymentID string, req RefundRequest) (json.RawMessage, error) {
	return c.do(ctx, "refund payment", http.MethodPost, "/api/payment/refund/"+url.PathEscape(paymentID), authorization, req)
}

// Ping probes backend reachability for readiness checks. Any HTTP response
// counts as reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) do(ctx context.Context, op, method, path, authorization string, payload any) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Op: op, Err: err}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(authorization) != "" {
		req.Header.Set("Authorization", authorization)
	}
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.Logger.Debug().Err(err).Str("op", op).Str("path", path).Msg("backend call failed")
		obs.ObserveBackendCall(op, "unreachable")
		return nil, &Error{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rejection := &Error{Op: op, Status: resp.StatusCode}
		var envelope struct {
			Message string          `json:"message"`
			Errors  json.RawMessage `json:"errors"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil {
			rejection.Message = envelope.Message
			if presentJSON(envelope.Errors) {
				rejection.Errors = envelope.Errors
			}
		}
		c.Logger.Debug().Int("status", resp.StatusCode).Str("op", op).Str("path", path).Msg("backend rejected request")
		obs.ObserveBackendCall(op, "rejected")
		return nil, rejection
	}

	obs.ObserveBackendCall(op, "ok")
	return body, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
