// Package auth verifies caller identity tokens and maps them to the role
// names and capabilities the validation engine consumes.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/sqlward/sqlward/pkg/errors"
)

// Identity is the authenticated caller as seen by the validation engine.
type Identity struct {
	Username            string
	Roles               []string
	MayExecuteDangerous bool
}

// Claims is the JWT claim set carried by access tokens.
type Claims struct {
	Roles               []string `json:"roles"`
	MayExecuteDangerous bool     `json:"may_execute_dangerous,omitempty"`
	jwt.RegisteredClaims
}

// Config holds token verification settings.
type Config struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// Verifier validates HS256 access tokens and extracts caller identity.
type Verifier struct {
	config Config
	logger zerolog.Logger
}

// NewVerifier creates a token verifier.
func NewVerifier(cfg Config, logger zerolog.Logger) *Verifier {
	return &Verifier{config: cfg, logger: logger}
}

// Verify parses and validates a signed token string. Only HS256 is accepted;
// a token signed with any other method is rejected before signature checks.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(v.config.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Warn().Err(err).Msg("Token verification failed")
		return Identity{}, errors.Wrap(err, errors.CodeUnauthorized, "invalid token")
	}
	if !token.Valid {
		return Identity{}, errors.New(errors.CodeUnauthorized, "invalid token")
	}
	if v.config.Issuer != "" && claims.Issuer != v.config.Issuer {
		return Identity{}, errors.Newf(errors.CodeUnauthorized, "unexpected issuer %q", claims.Issuer)
	}

	return Identity{
		Username:            claims.Subject,
		Roles:               claims.Roles,
		MayExecuteDangerous: claims.MayExecuteDangerous,
	}, nil
}

// Issue signs an access token for the given identity. The expiry comes from
// the configured TTL.
func (v *Verifier) Issue(id Identity, now time.Time) (string, error) {
	claims := Claims{
		Roles:               id.Roles,
		MayExecuteDangerous: id.MayExecuteDangerous,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			Issuer:    v.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.config.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(v.config.Secret))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Context keys for authentication
type contextKey string

const contextKeyIdentity contextKey = "identity"

// WithIdentity attaches the authenticated identity to a context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, id)
}

// IdentityFrom extracts the authenticated identity from a context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKeyIdentity).(Identity)
	return id, ok
}
