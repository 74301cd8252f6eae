package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

const accountSection = "account"

// knownTopKeys are the valid top-level keys and section names.
var knownTopKeys = []string{"account", "auth", "journal", "log_level", "network", "transfers"}

// knownSectionKeys are the valid keys inside each fixed section.
var knownSectionKeys = map[string][]string{
	"auth":      {"authority_host", "max_concurrent_token_requests", "resource"},
	"journal":   {"enabled", "path"},
	"network":   {"connect_timeout", "data_timeout", "user_agent"},
	"transfers": {"bandwidth_limit", "buffer_size", "storage_domain"},
}

// knownAccountKeys are the valid keys inside an [account.<name>] section.
var knownAccountKeys = []string{
	"access_key", "certificate_file", "client_id", "key_file", "kind", "storage_domain", "tenant_id",
}

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// an error with "did you mean?" suggestions for each unknown key. A key in
// an unknown section is reported once, for the section.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	seen := make(map[string]bool)

	for _, key := range md.Undecoded() {
		err := unknownKeyError(key)
		if err == nil || seen[err.Error()] {
			continue
		}

		seen[err.Error()] = true
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// unknownKeyError describes one undecoded key, or returns nil if the key is
// nested below something already known to be valid.
func unknownKeyError(key toml.Key) error {
	top := key[0]

	if !contains(knownTopKeys, top) {
		return withSuggestion(fmt.Sprintf("unknown config key %q", top), top, knownTopKeys)
	}

	if len(key) < 2 {
		return nil
	}

	if top == accountSection {
		if len(key) < 3 {
			return nil
		}

		return withSuggestion(fmt.Sprintf("unknown key %q in [account.%s]", key[2], key[1]), key[2], knownAccountKeys)
	}

	known := knownSectionKeys[top]
	if contains(known, key[1]) {
		return nil
	}

	return withSuggestion(fmt.Sprintf("unknown config key %q in [%s]", key[1], top), key[1], known)
}

func withSuggestion(msg, unknown string, known []string) error {
	if suggestion := closestMatch(unknown, known); suggestion != "" {
		return fmt.Errorf("%s, did you mean %q?", msg, suggestion)
	}

	return errors.New(msg)
}

func contains(list []string, s string) bool {
	i := sort.SearchStrings(list, s)
	return i < len(list) && list[i] == s
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
