package ens

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance is the largest edit distance still offered as a correction.
const maxSuggestionDistance = 2

//nolint:gochecknoglobals // static list of commonly used top-level labels
var knownTLDs = []string{"eth", "xyz", "art", "luxe", "kred", "club", "com", "org", "io", "app"}

// Suggest proposes a corrected name when the top-level label looks like a typo
// of a commonly used one, e.g. "vitalik.et" → "vitalik.eth". It returns "" when
// the name already uses a known label or nothing is close enough.
func Suggest(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		if name != "" && !strings.Contains(name, ".") && !strings.HasPrefix(name, "0x") {
			return name + ".eth"
		}
		return ""
	}

	tld := name[idx+1:]
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, known := range knownTLDs {
		if tld == known {
			return ""
		}
		if d := levenshtein.ComputeDistance(tld, known); d < bestDistance {
			best = known
			bestDistance = d
		}
	}

	if best == "" {
		return ""
	}
	return name[:idx+1] + best
}
