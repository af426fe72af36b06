package license

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultPublicKeyPEM verifies tokens issued by the vendor signing key.
// Release builds may replace it with -ldflags "-X github.com/filacost/lib/license.DefaultPublicKeyPEM=...".
var DefaultPublicKeyPEM = `-----BEGIN PUBLIC KEY-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAmJU91mU/KwhAlRGHn3ic
LLVgk52ptb/1hh0rz3TZvU3O67gzBNZL+fT/ffaqMEe6SqCPwOlIlSOwXTF9mJVt
bosqAXzKA+vm0b0172kMhFi386n89RcMLiDw8FqnZvKBoLFGi7mv7TXOzp7uQe5L
PsFsNrBIHairGGBKZJy8PQWVJYxuR4EEJLqEk/o1DWzyEpsEcS+RdFcf7GV9SHFi
RqL4WEErxx+3ZIHW6AWl4ahaeobdyHctHC2fkshoSqssxjFuJ0DmhK6Xsw5Suklw
DOPENK8XhU+6Vn2t7q59PTVv3QJBZHAehEY9+pXaG9Q/fHR74bq8UBdDPiJsECTj
bwIDAQAB
-----END PUBLIC KEY-----`

// TokenVerifier checks a license token at the given instant
type TokenVerifier interface {
	Verify(token string, now time.Time) (*Claims, error)
}

// RS256Verifier verifies RS256-signed tokens against a fixed public key and
// the local hardware fingerprint
type RS256Verifier struct {
	key         *rsa.PublicKey
	fingerprint func() string
}

// NewRS256Verifier parses the PEM public key. A nil fingerprint func uses Fingerprint.
func NewRS256Verifier(publicKeyPEM []byte, fingerprint func() string) (*RS256Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse license public key: %w", err)
	}
	if fingerprint == nil {
		fingerprint = Fingerprint
	}
	return &RS256Verifier{key: key, fingerprint: fingerprint}, nil
}

// NewDefaultVerifier verifies against the built-in vendor key and this machine's fingerprint
func NewDefaultVerifier() (*RS256Verifier, error) {
	return NewRS256Verifier([]byte(DefaultPublicKeyPEM), nil)
}

// Verify validates signature, algorithm, expiry and hardware binding
func (v *RS256Verifier) Verify(tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		// exp is compared in whole seconds, so a token is still valid during its expiry second
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenRequiredClaimMissing) {
			return nil, &DeniedError{State: StateExpired, Reason: "License expired"}
		}
		return nil, &DeniedError{State: StateInvalidSignature, Reason: fmt.Sprintf("Invalid license: %v", err)}
	}

	if claims.HW != "" && claims.HW != v.fingerprint() {
		return nil, &DeniedError{State: StateHWMismatch, Reason: "License not valid for this device"}
	}

	return claims, nil
}
