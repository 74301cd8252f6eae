// Package account describes the storage accounts an upload can target.
// Descriptors are owned by the caller (configuration, account management);
// this package only models and loads them. The set of account kinds is closed:
// Descriptor has an unexported marker method so only the variants declared
// here satisfy it.
package account

import (
	"crypto"
	"crypto/x509"
)

// Kind identifies a storage account variant.
type Kind int

// Account kinds. Only KindCertificate can be written to by the uploader.
const (
	KindCertificate Kind = iota + 1
	KindBlob
	KindGenTwo
)

// Kind names as they appear in config files.
const (
	KindNameCertificate = "adls-certificate"
	KindNameBlob        = "blob"
	KindNameGenTwo      = "adls-gen2"
)

func (k Kind) String() string {
	switch k {
	case KindCertificate:
		return KindNameCertificate
	case KindBlob:
		return KindNameBlob
	case KindGenTwo:
		return KindNameGenTwo
	default:
		return "unknown"
	}
}

// ParseKind maps a config kind name to a Kind. Returns false for unknown names.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case KindNameCertificate:
		return KindCertificate, true
	case KindNameBlob:
		return KindBlob, true
	case KindNameGenTwo:
		return KindGenTwo, true
	default:
		return 0, false
	}
}

// Descriptor is a storage account of one of the kinds declared in this package.
type Descriptor interface {
	Name() string
	Kind() Kind
	isDescriptor()
}

// CertificateInfo is the service principal material used to prove identity
// to the token issuer.
type CertificateInfo struct {
	ClientID    string
	TenantID    string // empty means the issuer's "common" authority
	Key         crypto.PrivateKey
	Certificate *x509.Certificate
}

// CertificateAccount is a Data Lake Store (Gen1) account reached through a
// service principal that authenticates with a client certificate.
type CertificateAccount struct {
	AccountName string
	Certificate CertificateInfo
	// StorageDomain overrides the default service domain, e.g. for
	// sovereign clouds. Empty means the uploader's default.
	StorageDomain string
}

// Name returns the account name, which is also the endpoint host prefix.
func (a *CertificateAccount) Name() string { return a.AccountName }

// Kind returns KindCertificate.
func (a *CertificateAccount) Kind() Kind { return KindCertificate }

// CertificateInfo returns the certificate material.
func (a *CertificateAccount) CertificateInfo() CertificateInfo { return a.Certificate }

func (*CertificateAccount) isDescriptor() {}

// BlobAccount is a blob storage account addressed with a shared access key.
type BlobAccount struct {
	AccountName string
	AccessKey   string
}

func (a *BlobAccount) Name() string { return a.AccountName }

func (a *BlobAccount) Kind() Kind { return KindBlob }

func (*BlobAccount) isDescriptor() {}

// GenTwoAccount is a Data Lake Storage Gen2 account attached through an
// interactive user login.
type GenTwoAccount struct {
	AccountName string
}

func (a *GenTwoAccount) Name() string { return a.AccountName }

func (a *GenTwoAccount) Kind() Kind { return KindGenTwo }

func (*GenTwoAccount) isDescriptor() {}
