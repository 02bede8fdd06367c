// Package otp generates and validates the delivery confirmation codes
// handed to customers.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Validity is how long a code stays usable after issuance.
const Validity = 10 * time.Minute

const (
	codeMin  = 100000
	codeSpan = 900000
)

// Generate returns a uniformly random six-digit code. The range is
// [100000, 999999] so the code never needs zero padding.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}

// Expired reports whether a code issued at issuedAt is past its validity
// window at the reference time now. The boundary instant is still valid.
func Expired(issuedAt, now time.Time, validity time.Duration) bool {
	if validity <= 0 {
		validity = Validity
	}
	return now.Sub(issuedAt) > validity
}
