// Package testutil provides shared helpers for package tests: self-signed
// service principal certificates and the PEM files that carry them. It
// depends only on stdlib so any test package can import it.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testKeyBits keeps key generation fast; issuers never see these keys.
const testKeyBits = 2048

// SelfSignedCert generates an RSA key and a self-signed certificate for it.
func SelfSignedCert(t testing.TB) (*rsa.PrivateKey, *x509.Certificate) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, testKeyBits)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "adls-go test principal"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}

	return key, cert
}

// WriteCombinedPEM writes the certificate followed by the PKCS#8 key into a
// single 0600 file under dir and returns its path.
func WriteCombinedPEM(t testing.TB, dir string, key *rsa.PrivateKey, cert *x509.Certificate) string {
	t.Helper()

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshaling key: %v", err)
	}

	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	data = append(data, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})...)

	path := filepath.Join(dir, "principal.pem")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing PEM: %v", err)
	}

	return path
}
