package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/adls-go/internal/account"
	"github.com/tonimelisma/adls-go/internal/adls"
	"github.com/tonimelisma/adls-go/internal/outcome"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the selected account can obtain a token",
		Long: `Load the account's certificate material and request a storage token
without uploading anything. The token itself is never printed.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

type checkJSONOutput struct {
	Account  string `json:"account"`
	Kind     string `json:"kind"`
	Endpoint string `json:"endpoint"`
	Scope    string `json:"scope"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	s, err := newSession(resolvedCfg)
	if err != nil {
		return err
	}

	desc, err := resolvedCfg.Descriptor()
	if err != nil {
		return err
	}

	acct, ok := desc.(*account.CertificateAccount)
	if !ok {
		return outcome.UnsupportedAccountKind(desc.Kind())
	}

	tok, err := s.broker().AcquireAccessToken(cmd.Context(), acct)
	if err != nil {
		return err
	}

	domain := acct.StorageDomain
	if domain == "" {
		domain = resolvedCfg.Transfers.StorageDomain
	}

	out := checkJSONOutput{
		Account:  acct.Name(),
		Kind:     acct.Kind().String(),
		Endpoint: adls.EndpointURL(acct.Name(), domain),
		Scope:    tok.Scope,
	}

	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}

		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Account:  %s (%s)\n", out.Account, out.Kind)
	fmt.Fprintf(cmd.OutOrStdout(), "Endpoint: %s\n", out.Endpoint)
	fmt.Fprintf(cmd.OutOrStdout(), "Token:    acquired for scope %s\n", out.Scope)

	return nil
}
