// SPDX-License-Identifier: GPL-3.0-only

// Package secretpolicy gates what an admin may set as a property's
// admin secret. The secret is the only thing between the internet and
// a building's editing surface, so the bar is deliberately high.
package secretpolicy

import (
	"blockboard-server/commons"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"
)

func ValidateSecret(ctx context.Context, secret string) error {
	if len([]rune(secret)) < 10 {
		return errors.New("admin password must be at least 10 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range secret {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("admin password must mix uppercase, lowercase and digits")
	}

	if commons.GetEnv("PWNED_PASSWORDS_ENABLED", "true") == "true" {
		pwned, err := checkSecretPwned(ctx, secret)
		if err != nil {
			// The range API being down must not block a password
			// change; log and let the local rules stand.
			commons.Logger.Error("Error checking pwned passwords:", err)
		}
		if pwned {
			return errors.New("this password appears in known data breaches; choose a different one")
		}
	}
	return nil
}

// checkSecretPwned asks the Pwned Passwords range API whether the
// secret's SHA-1 appears in a breach corpus. Only the first five hash
// characters ever leave the process.
func checkSecretPwned(ctx context.Context, secret string) (bool, error) {
	sum := sha1.Sum([]byte(secret))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := hash[:5], hash[5:]

	url := fmt.Sprintf("https://api.pwnedpasswords.com/range/%s", prefix)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("range request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("range request returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read range response: %w", err)
	}
	for _, line := range strings.Split(string(body), "\n") {
		candidate, _, found := strings.Cut(strings.TrimSpace(line), ":")
		if found && candidate == suffix {
			return true, nil
		}
	}
	return false, nil
}
