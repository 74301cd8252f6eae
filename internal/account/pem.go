package account

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertificate is returned when a PEM file holds no CERTIFICATE block.
var ErrNoCertificate = errors.New("account: no certificate found")

// ErrNoPrivateKey is returned when a PEM file holds no private key block.
var ErrNoPrivateKey = errors.New("account: no private key found")

// LoadCertificateInfo reads the certificate from certPath and the private key
// from keyPath. Both may name the same combined PEM file. Key encodings
// accepted: PKCS#8, PKCS#1 (RSA) and SEC 1 (EC).
func LoadCertificateInfo(clientID, tenantID, certPath, keyPath string) (CertificateInfo, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return CertificateInfo{}, fmt.Errorf("account: reading certificate %s: %w", certPath, err)
	}

	keyPEM := certPEM
	if keyPath != "" && keyPath != certPath {
		keyPEM, err = os.ReadFile(keyPath)
		if err != nil {
			return CertificateInfo{}, fmt.Errorf("account: reading private key %s: %w", keyPath, err)
		}
	}

	cert, err := ParseCertificatePEM(certPEM)
	if err != nil {
		return CertificateInfo{}, fmt.Errorf("account: %s: %w", certPath, err)
	}

	key, err := ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return CertificateInfo{}, fmt.Errorf("account: %s: %w", keyPath, err)
	}

	return CertificateInfo{
		ClientID:    clientID,
		TenantID:    tenantID,
		Key:         key,
		Certificate: cert,
	}, nil
}

// ParseCertificatePEM returns the first CERTIFICATE block in data.
func ParseCertificatePEM(data []byte) (*x509.Certificate, error) {
	for {
		var block *pem.Block

		block, data = pem.Decode(data)
		if block == nil {
			return nil, ErrNoCertificate
		}

		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate: %w", err)
		}

		return cert, nil
	}
}

// ParsePrivateKeyPEM returns the first private key block in data.
func ParsePrivateKeyPEM(data []byte) (crypto.PrivateKey, error) {
	for {
		var block *pem.Block

		block, data = pem.Decode(data)
		if block == nil {
			return nil, ErrNoPrivateKey
		}

		switch block.Type {
		case "PRIVATE KEY":
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parsing PKCS#8 key: %w", err)
			}

			return key, nil
		case "RSA PRIVATE KEY":
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parsing PKCS#1 key: %w", err)
			}

			return key, nil
		case "EC PRIVATE KEY":
			key, err := x509.ParseECPrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parsing EC key: %w", err)
			}

			return key, nil
		}
	}
}
