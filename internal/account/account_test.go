package account

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/adls-go/testutil"
)

func TestKind_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindCertificate, KindBlob, KindGenTwo} {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	_, ok := ParseKind("s3")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestDescriptor_Variants(t *testing.T) {
	t.Parallel()

	descs := []Descriptor{
		&CertificateAccount{AccountName: "lake"},
		&BlobAccount{AccountName: "blobby", AccessKey: "k"},
		&GenTwoAccount{AccountName: "gen2"},
	}

	assert.Equal(t, KindCertificate, descs[0].Kind())
	assert.Equal(t, KindBlob, descs[1].Kind())
	assert.Equal(t, KindGenTwo, descs[2].Kind())
	assert.Equal(t, "lake", descs[0].Name())
	assert.Equal(t, "blobby", descs[1].Name())
	assert.Equal(t, "gen2", descs[2].Name())
}

func TestLoadCertificateInfo_CombinedFile(t *testing.T) {
	t.Parallel()

	key, cert := testutil.SelfSignedCert(t)
	path := testutil.WriteCombinedPEM(t, t.TempDir(), key, cert)

	info, err := LoadCertificateInfo("client-1", "tenant-1", path, "")
	require.NoError(t, err)

	assert.Equal(t, "client-1", info.ClientID)
	assert.Equal(t, "tenant-1", info.TenantID)
	assert.True(t, cert.Equal(info.Certificate))

	rsaKey, ok := info.Key.(*rsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, key.Equal(rsaKey))
}

func TestLoadCertificateInfo_SeparatePKCS1Key(t *testing.T) {
	t.Parallel()

	key, cert := testutil.SelfSignedCert(t)
	dir := t.TempDir()

	certPath := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(certPath,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}), 0o600))

	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(keyPath,
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), 0o600))

	info, err := LoadCertificateInfo("c", "", certPath, keyPath)
	require.NoError(t, err)
	assert.NotNil(t, info.Key)
	assert.NotNil(t, info.Certificate)
}

func TestLoadCertificateInfo_MissingKey(t *testing.T) {
	t.Parallel()

	_, cert := testutil.SelfSignedCert(t)
	path := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(path,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}), 0o600))

	_, err := LoadCertificateInfo("c", "", path, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestLoadCertificateInfo_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadCertificateInfo("c", "", "/nonexistent/cert.pem", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading certificate")
}

func TestParseCertificatePEM_Garbage(t *testing.T) {
	t.Parallel()

	_, err := ParseCertificatePEM([]byte("not pem at all"))
	assert.ErrorIs(t, err, ErrNoCertificate)

	bad := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("junk")})
	_, err = ParseCertificatePEM(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing certificate")
}
