package auth

import (
	"net/http"

	"github.com/brewhub/payment-gateway/internal/common"
)

// Middleware wires authentication context into HTTP handlers.
//
// Authenticate only attaches an identity; it never rejects. Handlers decide
// on 403 themselves because structural validation of the request body has
// to run before the identity check, and a rejecting middleware would invert
// that order.
type Middleware struct {
	Service *Service
}

// Authenticate attaches the caller to the request context when a valid
// bearer token is present.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Service == nil {
			next.ServeHTTP(w, r)
			return
		}
		token := common.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		caller, err := m.Service.ParseAccessToken(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithCaller(r.Context(), caller)))
	})
}
