package ens

import (
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	scouterr "github.com/mrz1836/scout/pkg/errors"
)

// reverseSuffix is the ENS namespace holding reverse records.
const reverseSuffix = "addr.reverse"

//nolint:gochecknoglobals // immutable UTS-46 profile
var profile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// Normalize maps a user supplied name to its canonical ENS form.
// Names are NFC normalized, UTS-46 mapped (which lowercases ASCII), and must
// contain at least two non-empty labels.
func Normalize(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", scouterr.ErrInvalidName
	}

	mapped, err := profile.ToUnicode(norm.NFC.String(trimmed))
	if err != nil {
		return "", scouterr.WithDetails(scouterr.WithCause(scouterr.ErrInvalidName, err), map[string]string{
			"name": name,
		})
	}

	labels := strings.Split(mapped, ".")
	if len(labels) < 2 {
		return "", scouterr.WithDetails(scouterr.ErrInvalidName, map[string]string{
			"name":   name,
			"reason": "missing top-level label",
		})
	}
	for _, label := range labels {
		if label == "" {
			return "", scouterr.WithDetails(scouterr.ErrInvalidName, map[string]string{
				"name":   name,
				"reason": "empty label",
			})
		}
	}

	return mapped, nil
}

// Namehash computes the EIP-137 node for an already normalized name.
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := LabelHash(labels[i])
		node = keccak(node[:], label[:])
	}
	return node
}

// LabelHash returns keccak256 of a single label.
func LabelHash(label string) [32]byte {
	return keccak([]byte(label))
}

// ReverseName returns the reverse-record name for a hex address.
func ReverseName(address string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")) + "." + reverseSuffix
}

func keccak(parts ...[]byte) [32]byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		hasher.Write(p)
	}
	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}
