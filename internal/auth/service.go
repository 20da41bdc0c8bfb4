package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/brewhub/payment-gateway/internal/common"
)

const emailClaim = "email"

// Service verifies bearer credentials and extracts the caller identity.
// The gateway never issues tokens; it only consumes identities minted by
// the upstream identity provider sharing the same secret.
type Service struct {
	secret    []byte
	validator TokenValidator
	now       func() time.Time
}

// Config configures the auth service.
type Config struct {
	Secret    string
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// NewService constructs a Service instance.
func NewService(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	return &Service{
		secret: []byte(secret),
		validator: TokenValidator{
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audience,
			ClockSkew: cfg.ClockSkew,
			Algorithm: jwa.HS256,
		},
		now: time.Now,
	}, nil
}

// ParseAccessToken validates an access token and returns the caller it
// identifies. The subject claim carries the numeric user id.
func (s *Service) ParseAccessToken(token string) (common.Caller, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return common.Caller{}, errors.New("auth: missing token")
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return common.Caller{}, fmt.Errorf("auth: invalid token: %w", err)
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return common.Caller{}, fmt.Errorf("auth: invalid token: %w", err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return common.Caller{}, fmt.Errorf("auth: invalid token: %w", err)
	}
	id, err := strconv.ParseInt(parsed.Subject(), 10, 64)
	if err != nil {
		return common.Caller{}, fmt.Errorf("auth: subject is not a user id: %w", err)
	}
	caller := common.Caller{ID: id}
	if v, ok := parsed.Get(emailClaim); ok {
		if email, ok := v.(string); ok {
			caller.Email = email
		}
	}
	return caller, nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if algorithm != "" && alg != algorithm {
			return "", errors.New("auth: token carries conflicting algorithms")
		}
		algorithm = alg
	}
	return algorithm, nil
}
