package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const (
	defaultOTPLength      = 6
	resetTokenBytes       = 20
	temporaryPasswordLen  = 7
	temporaryPasswordTail = "$"
	alphanumeric          = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ==================== OTP ====================

// GenerateOTP returns a number with exactly length digits, uniformly drawn
// from [10^(length-1), 10^length).
func GenerateOTP(length int) (int, error) {
	if length <= 0 || length > 9 {
		length = defaultOTPLength
	}

	lower := pow10(length - 1)
	span := big.NewInt(int64(pow10(length) - lower))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, fmt.Errorf("generate otp: %w", err)
	}

	return lower + int(n.Int64()), nil
}

// ==================== RESET TOKEN ====================

// GenerateResetToken returns 20 random bytes hex-encoded.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ==================== TEMPORARY PASSWORD ====================

// GenerateTemporaryPassword returns 7 random alphanumeric characters followed by "$".
func GenerateTemporaryPassword() (string, error) {
	out := make([]byte, temporaryPasswordLen)
	charset := big.NewInt(int64(len(alphanumeric)))

	for i := range out {
		n, err := rand.Int(rand.Reader, charset)
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		out[i] = alphanumeric[n.Int64()]
	}

	return string(out) + temporaryPasswordTail, nil
}

// ==================== EXPIRY ====================

// ExpiryMillis returns now+ttl as epoch milliseconds.
func ExpiryMillis(now time.Time, ttl time.Duration) int64 {
	return now.Add(ttl).UnixMilli()
}

// IsExpired reports whether an epoch-millisecond expiry lies strictly before now.
func IsExpired(expiry int64, now time.Time) bool {
	return now.UnixMilli() > expiry
}

func pow10(n int) int {
	result := 1
	for i := 0; i < n; i++ {
		result *= 10
	}
	return result
}
