// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Sonora is the canonical application identifier used for filesystem paths and CLI branding.
	Sonora = "sonora"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is the HTTP User-Agent sent to catalog servers when streaming media and artwork.
	UserAgent = "sonora/" + Version
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
