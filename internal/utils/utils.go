package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"github.com/rs/xid"
)

// AppIDPrefix marks public App identifiers
const AppIDPrefix = "OA-"

// NewAppID returns a fresh public App identifier
func NewAppID() string {
	return AppIDPrefix + xid.New().String()
}

// IsAppID reports whether s has the shape of a public App identifier
func IsAppID(s string) bool {
	rest, ok := strings.CutPrefix(s, AppIDPrefix)
	if !ok {
		return false
	}
	_, err := xid.FromString(rest)
	return err == nil
}

// GenerateOTP returns a numeric code of the given number of digits
func GenerateOTP(digits int) (string, error) {
	if digits <= 0 {
		return "", errors.New("otp length must be positive")
	}
	var b strings.Builder
	b.Grow(digits)
	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// NormalizeEmail trims and lower-cases an address so lookups are case insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
