package credential

import (
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // x5t is defined as a SHA-1 thumbprint
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tonimelisma/adls-go/internal/account"
)

// assertionLifetime is how long a signed client assertion stays valid.
const assertionLifetime = 10 * time.Minute

var (
	errNoCertificate = errors.New("certificate is missing")
	errNoClientID    = errors.New("client id is missing")
	errKeyMismatch   = errors.New("private key does not match the certificate")
)

// validateMaterial checks the certificate material and returns the RSA key
// used to sign the client assertion.
func validateMaterial(info account.CertificateInfo) (*rsa.PrivateKey, error) {
	if info.ClientID == "" {
		return nil, errNoClientID
	}

	if info.Certificate == nil {
		return nil, errNoCertificate
	}

	key, ok := info.Key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key type %T is not supported; an RSA key is required", info.Key)
	}

	if !key.PublicKey.Equal(info.Certificate.PublicKey) {
		return nil, errKeyMismatch
	}

	return key, nil
}

// thumbprint returns the base64url SHA-1 thumbprint of the certificate, the
// value of the assertion's x5t header.
func thumbprint(info account.CertificateInfo) string {
	sum := sha1.Sum(info.Certificate.Raw) //nolint:gosec // see import

	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// signAssertion builds the RS256 client assertion presented to the token
// endpoint in place of a client secret.
func signAssertion(info account.CertificateInfo, key *rsa.PrivateKey, audience string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    info.ClientID,
		Subject:   info.ClientID,
		Audience:  jwt.ClaimStrings{audience},
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["x5t"] = thumbprint(info)

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing client assertion: %w", err)
	}

	return signed, nil
}
