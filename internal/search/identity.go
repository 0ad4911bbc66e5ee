package search

// Identity is what a search resolved to. Address is set only when a name was
// forward-resolved; Name comes from reverse resolution or the confirmed input;
// Avatar always belongs to Name.
type Identity struct {
	Address string `json:"address,omitempty"`
	Name    string `json:"name,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
}

// IsZero reports whether nothing has been resolved.
func (i Identity) IsZero() bool {
	return i.Address == "" && i.Name == "" && i.Avatar == ""
}

// Primary returns the identity that drives display: the address when known, else the name.
func (i Identity) Primary() string {
	if i.Address != "" {
		return i.Address
	}
	return i.Name
}

// DisplayText is the short label shown next to the avatar.
func (i Identity) DisplayText() string {
	if i.Address != "" {
		return SlicedText(i.Address)
	}
	return i.Name
}

// CopyText is the value offered for copying.
func (i Identity) CopyText() string {
	return i.Primary()
}

// SlicedText shortens long hex strings to 0x1234...abcd.
func SlicedText(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
