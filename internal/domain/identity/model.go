package identity

import "strings"

// Source tags how a canonical player key was obtained.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
	SourceFallback  Source = "fallback"
)

// Mapping is one row of the external identity-mapping table.
type Mapping struct {
	Platform     string
	ExternalID   string
	PrimaryKey   string
	SecondaryKey string
}

// Resolution is the tagged outcome of resolving one external id.
type Resolution struct {
	Key    string
	Source Source
}

// FallbackKey synthesizes the namespaced key used when no mapping exists.
func FallbackKey(platform, externalID string) string {
	return platform + ":" + externalID
}

// FallbackPrefix is the key prefix shared by all fallback keys of a platform.
func FallbackPrefix(platform string) string {
	return platform + ":"
}

// IsFallbackKey reports whether key was synthesized for platform.
func IsFallbackKey(platform, key string) bool {
	return strings.HasPrefix(key, FallbackPrefix(platform))
}

// Resolve applies the priority order primary, secondary, fallback to a mapping
// lookup result. found is false when no mapping row exists.
func Resolve(platform, externalID string, mapping Mapping, found bool) Resolution {
	if found {
		if key := strings.TrimSpace(mapping.PrimaryKey); key != "" {
			return Resolution{Key: key, Source: SourcePrimary}
		}
		if key := strings.TrimSpace(mapping.SecondaryKey); key != "" {
			return Resolution{Key: key, Source: SourceSecondary}
		}
	}
	return Resolution{Key: FallbackKey(platform, externalID), Source: SourceFallback}
}
