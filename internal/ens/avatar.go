package ens

import (
	"strings"
)

// Gateways turn content-addressed avatar records into fetchable URLs.
type Gateways struct {
	IPFS    string // e.g. https://ipfs.io/ipfs/
	Arweave string // e.g. https://arweave.net/
}

// DefaultGateways returns public gateways.
func DefaultGateways() Gateways {
	return Gateways{
		IPFS:    "https://ipfs.io/ipfs/",
		Arweave: "https://arweave.net/",
	}
}

// AvatarURL converts an ENS avatar text record into a URI a client can display.
// NFT references (eip155:...) are returned unchanged; unusable schemes yield "".
func (g Gateways) AvatarURL(record string) string {
	record = strings.TrimSpace(record)
	lower := strings.ToLower(record)

	switch {
	case record == "":
		return ""
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return record
	case strings.HasPrefix(lower, "data:image/"):
		return record
	case strings.HasPrefix(lower, "eip155:"):
		return record
	case strings.HasPrefix(lower, "ipfs://"):
		path := record[len("ipfs://"):]
		path = strings.TrimPrefix(path, "ipfs/")
		return ensureSlash(g.IPFS) + path
	case strings.HasPrefix(lower, "ipns://"):
		return ensureSlash(ipnsGateway(g.IPFS)) + record[len("ipns://"):]
	case strings.HasPrefix(lower, "ar://"):
		return ensureSlash(g.Arweave) + record[len("ar://"):]
	case isBareCID(record):
		return ensureSlash(g.IPFS) + record
	default:
		return ""
	}
}

func ipnsGateway(ipfs string) string {
	trimmed := strings.TrimSuffix(ensureSlash(ipfs), "ipfs/")
	return trimmed + "ipns/"
}

func ensureSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// isBareCID recognizes CIDv0 (Qm..., 46 chars) and base32 CIDv1 (bafy...).
func isBareCID(s string) bool {
	if strings.HasPrefix(s, "Qm") && len(s) == 46 {
		return true
	}
	return strings.HasPrefix(s, "bafy") && len(s) > 50 && !strings.ContainsAny(s, "/:")
}
