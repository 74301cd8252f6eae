package config

import (
	"fmt"

	"github.com/tonimelisma/adls-go/internal/account"
)

// Descriptor builds the account descriptor for the section. For a
// certificate account the PEM material is read from disk; key_file defaults
// to certificate_file for combined PEM files.
func (a AccountConfig) Descriptor(name string) (account.Descriptor, error) {
	kind, ok := account.ParseKind(a.Kind)
	if !ok {
		return nil, fmt.Errorf("account %q: unknown kind %q", name, a.Kind)
	}

	switch kind {
	case account.KindCertificate:
		keyFile := a.KeyFile
		if keyFile == "" {
			keyFile = a.CertificateFile
		}

		info, err := account.LoadCertificateInfo(a.ClientID, a.TenantID,
			expandTilde(a.CertificateFile), expandTilde(keyFile))
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", name, err)
		}

		return &account.CertificateAccount{
			AccountName:   name,
			Certificate:   info,
			StorageDomain: a.StorageDomain,
		}, nil
	case account.KindBlob:
		return &account.BlobAccount{AccountName: name, AccessKey: a.AccessKey}, nil
	default:
		return &account.GenTwoAccount{AccountName: name}, nil
	}
}

// Descriptor builds the descriptor for the selected account.
func (r *Resolved) Descriptor() (account.Descriptor, error) {
	return r.Account.Descriptor(r.AccountName)
}
