package accounts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier links bearer tokens to account ids. Tokens are HS256 JWTs carrying
// the account id in an "account_id" claim.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Issue signs a token for accountID valid for ttl.
func (v *Verifier) Issue(accountID string, ttl time.Duration) (string, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{"account_id": accountID, "exp": exp.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// AccountID validates token and returns the account it belongs to.
func (v *Verifier) AccountID(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	id, ok := claims["account_id"].(string)
	if !ok || id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}

// FromHeader extracts the account id from an "Authorization: Bearer" header value.
func (v *Verifier) FromHeader(header string) (string, error) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", ErrMissingToken
	}
	return v.AccountID(strings.TrimPrefix(header, "Bearer "))
}
