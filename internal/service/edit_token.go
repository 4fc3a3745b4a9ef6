package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidEditToken = errors.New("invalid or expired edit token")

// editClaims bind a token to one microsite and one edit version. Bumping
// the stored version revokes every token issued before.
type editClaims struct {
	Slug    string `json:"slug"`
	Version int    `json:"ver"`
	jwt.RegisteredClaims
}

// EditTokens issues and checks the capability tokens that allow changing
// a stored microsite. There are no accounts: holding the token is the
// permission.
type EditTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewEditTokens(secret string, ttl time.Duration) *EditTokens {
	return &EditTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *EditTokens) Issue(slug string, version int) (string, error) {
	now := t.now()
	claims := editClaims{
		Slug:    slug,
		Version: version,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  slug,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks that raw was issued for slug at version.
func (t *EditTokens) Verify(raw, slug string, version int) error {
	if raw == "" {
		return ErrInvalidEditToken
	}

	var claims editClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEditToken, err)
	}

	if claims.Slug != slug || claims.Version != version {
		return ErrInvalidEditToken
	}
	return nil
}
