// Package search implements the explorer search bar: it classifies free-form
// input, resolves names and addresses to an on-chain identity, and navigates
// to the canonical explorer page for the result.
package search

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Kind is the classification of a raw search input.
type Kind int

// Input kinds.
const (
	KindInvalid Kind = iota
	KindTransaction
	KindAddress
	KindName
)

//nolint:gochecknoglobals // compiled once
var (
	txHashPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTransaction:
		return "transaction"
	case KindAddress:
		return "address"
	case KindName:
		return "name"
	default:
		return "invalid"
	}
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classified is a raw input tagged with its kind.
type Classified struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// Classify tags raw input as a transaction hash, an address, or a name to try.
// Surrounding whitespace is ignored. Mixed-case addresses must carry a valid
// EIP-55 checksum; a bad checksum falls through to name resolution, which
// then fails.
func Classify(raw string) Classified {
	value := strings.TrimSpace(raw)

	switch {
	case value == "":
		return Classified{Kind: KindInvalid}
	case txHashPattern.MatchString(value):
		return Classified{Kind: KindTransaction, Value: value}
	case IsAddress(value):
		return Classified{Kind: KindAddress, Value: value}
	default:
		return Classified{Kind: KindName, Value: value}
	}
}

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address that is
// all lowercase, all uppercase, or correctly checksummed.
func IsAddress(s string) bool {
	if !addressPattern.MatchString(s) {
		return false
	}
	hexPart := s[2:]
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}
	return common.HexToAddress(s).Hex() == s
}
