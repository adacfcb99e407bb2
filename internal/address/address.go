// Package address validates and inspects Solana-style base58 contract addresses.
package address

import (
	"errors"
	"fmt"
	"regexp"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Alphabet is the base58 alphabet (no 0, O, I, l).
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Length is the length of generated contract addresses.
const Length = 44

// PublicKeyLength is the byte length of a decoded ed25519 public key.
const PublicKeyLength = 32

var (
	// ErrInvalidFormat is returned when an address has the wrong length or alphabet.
	ErrInvalidFormat = errors.New("invalid address format")

	addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// Info describes a decoded address.
type Info struct {
	Address      string `json:"address"`
	Valid        bool   `json:"valid"`
	DecodedBytes int    `json:"decodedBytes"`
	OnCurve      bool   `json:"onCurve"` // 32-byte key that is a valid ed25519 point
}

// IsValid reports whether s looks like a Solana address and decodes as base58.
func IsValid(s string) bool {
	return Validate(s) == nil
}

// Validate returns ErrInvalidFormat when s is not a plausible address.
func Validate(s string) error {
	if !addressPattern.MatchString(s) {
		return ErrInvalidFormat
	}
	if _, err := base58.Decode(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

// Inspect decodes s and classifies it. Invalid addresses yield Valid=false.
func Inspect(s string) Info {
	info := Info{Address: s}
	if !addressPattern.MatchString(s) {
		return info
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return info
	}
	info.Valid = true
	info.DecodedBytes = len(decoded)
	info.OnCurve = isOnCurve(decoded)
	return info
}

// Truncate shortens an address to its first start and last end characters.
func Truncate(s string, start, end int) string {
	if len(s) <= start+end {
		return s
	}
	return s[:start] + "..." + s[len(s)-end:]
}

func isOnCurve(point []byte) bool {
	if len(point) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
