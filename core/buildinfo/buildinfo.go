// Package buildinfo carries version metadata stamped by the linker:
//
//	go build -ldflags "-X github.com/m3rciful/lotbot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/lotbot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/lotbot/core/buildinfo.Date=$(date -u +%FT%TZ)" ./cmd/lotbot
package buildinfo

import "log/slog"

var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC3339; empty for local builds.
	Date = ""
)

// Attrs returns the build metadata as log attributes.
func Attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("version", Version),
		slog.String("commit", Commit),
	}
	if Date != "" {
		attrs = append(attrs, slog.String("build_time", Date))
	}
	return attrs
}
