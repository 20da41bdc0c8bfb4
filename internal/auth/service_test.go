package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/brewhub/payment-gateway/internal/auth"
	"github.com/brewhub/payment-gateway/internal/common"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret, subject, email string, expires time.Time) string {
	t.Helper()
	builder := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(time.Now()).
		Expiration(expires)
	if email != "" {
		builder = builder.Claim("email", email)
	}
	token, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(secret)))
	require.NoError(t, err)
	return string(signed)
}

func TestParseAccessToken(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: testSecret})
	require.NoError(t, err)

	token := signToken(t, testSecret, "42", "buyer@example.com", time.Now().Add(time.Hour))
	caller, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), caller.ID)
	require.Equal(t, "buyer@example.com", caller.Email)
}

func TestParseAccessTokenRejectsBadSignature(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: testSecret})
	require.NoError(t, err)

	token := signToken(t, "wrong-secret", "42", "", time.Now().Add(time.Hour))
	_, err = svc.ParseAccessToken(token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: testSecret})
	require.NoError(t, err)

	token := signToken(t, testSecret, "42", "", time.Now().Add(-time.Hour))
	_, err = svc.ParseAccessToken(token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsNonNumericSubject(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: testSecret})
	require.NoError(t, err)

	token := signToken(t, testSecret, "not-a-number", "", time.Now().Add(time.Hour))
	_, err = svc.ParseAccessToken(token)
	require.Error(t, err)
}

func TestAuthenticateAttachesCaller(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: testSecret})
	require.NoError(t, err)
	mw := auth.Middleware{Service: svc}

	var got common.Caller
	var present bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, present = common.CallerFrom(r.Context())
	})

	token := signToken(t, testSecret, "7", "buyer@example.com", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/payment/status/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Authenticate(next).ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, present)
	require.Equal(t, int64(7), got.ID)
}

func TestAuthenticatePassesThroughWithoutToken(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: testSecret})
	require.NoError(t, err)
	mw := auth.Middleware{Service: svc}

	var present bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = common.CallerFrom(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/payment/status/1", nil)
	rr := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(rr, req)

	require.False(t, present)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthenticateIgnoresInvalidToken(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: testSecret})
	require.NoError(t, err)
	mw := auth.Middleware{Service: svc}

	var present bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = common.CallerFrom(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/payment/status/1", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	mw.Authenticate(next).ServeHTTP(httptest.NewRecorder(), req)

	require.False(t, present)
}
