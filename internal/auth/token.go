package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/models"
)

// Token audiences. A token minted for one service never verifies on the other.
const (
	AudienceTeam  = "team-board"
	AudienceTasks = "tasks"
)

var errSecretUnset = apperr.New(apperr.Misconfigured, "Secret Key is not defined")

// Claims is the JWT payload.
type Claims struct {
	Role  models.Role `json:"role"`
	Email string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 bearer tokens for one audience.
type Issuer struct {
	secret   []byte
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer returns an Issuer. A zero ttl issues tokens without expiry.
func NewIssuer(secret, audience string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), audience: audience, ttl: ttl, now: time.Now}
}

// Issue mints a token for the given subject.
func (i *Issuer) Issue(p Principal) (string, error) {
	if len(i.secret) == 0 {
		return "", errSecretUnset
	}
	now := i.now()
	claims := &Claims{
		Role:  p.Role,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  p.ID,
			Audience: jwt.ClaimStrings{i.audience},
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "sign token", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns the principal it carries. Any
// tampering, foreign audience, wrong algorithm or expiry is Forbidden.
func (i *Issuer) Verify(tokenString string) (Principal, error) {
	if len(i.secret) == 0 {
		return Principal{}, errSecretUnset
	}
	if tokenString == "" {
		return Principal{}, apperr.New(apperr.Unauthorized, "Unauthorized request")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(i.audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Principal{}, apperr.Wrap(apperr.Forbidden, tokenErrorMessage(err), err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return Principal{}, apperr.New(apperr.Forbidden, "invalid token")
	}

	return Principal{ID: claims.Subject, Role: claims.Role, Email: claims.Email}, nil
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "jwt malformed"
	default:
		return "invalid token"
	}
}
