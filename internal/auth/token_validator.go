package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid access token")

// Claims are the access token claims issued by the identity provider. The
// subject carries the owner's account id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Identity struct {
	UserId uuid.UUID
	Email  string
}

// TokenValidator verifies HS256-signed bearer tokens.
type TokenValidator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenValidator(secret string, issuer string) (*TokenValidator, error) {
	if secret == "" {
		return nil, errors.New("auth: jwt secret must be provided")
	}
	return &TokenValidator{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (v *TokenValidator) Validate(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: subject is not a valid id", ErrInvalidToken)
	}
	if claims.Email == "" {
		return Identity{}, fmt.Errorf("%w: email claim missing", ErrInvalidToken)
	}

	return Identity{UserId: userId, Email: claims.Email}, nil
}
