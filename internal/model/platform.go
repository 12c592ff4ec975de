package model

import (
	"fmt"
	"slices"
	"strings"
)

// Platform identifies the broker an export file came from.
type Platform string

const (
	PlatformVanguardUK Platform = "vanguard_uk"
)

// platformInfo is the compile-time metadata attached to each Platform.
type platformInfo struct {
	extension   string
	currency    string
	description string
	aliases     []string
}

var platforms = map[Platform]platformInfo{
	PlatformVanguardUK: {
		extension:   "Xls",
		currency:    "GBP",
		description: "Vanguard Investor UK",
		aliases:     []string{"VanguardUK"},
	},
}

// Platforms returns every known platform.
func Platforms() []Platform {
	return []Platform{PlatformVanguardUK}
}

// ParsePlatform resolves a manifest tag to a Platform. Both the stable id
// ("vanguard_uk") and the legacy variant spelling ("VanguardUK") are accepted.
func ParsePlatform(s string) (Platform, error) {
	known := Platforms()
	for _, p := range known {
		if s == string(p) || slices.Contains(platforms[p].aliases, s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q (known: %s)", s, strings.Join(ids(known), ", "))
}

func ids(ps []Platform) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}
	return out
}

// ID returns the stable string id used in manifests and the store.
func (p Platform) ID() string { return string(p) }

// FileExtension returns the extension (without dot) of the platform's export files.
func (p Platform) FileExtension() string { return platforms[p].extension }

// Description returns a human-readable platform name.
func (p Platform) Description() string { return platforms[p].description }

// Currency returns the currency symbol transactions on this platform are priced in.
func (p Platform) Currency() string { return platforms[p].currency }

// UnmarshalText implements encoding.TextUnmarshaler so manifests decode directly.
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := ParsePlatform(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p), nil
}
