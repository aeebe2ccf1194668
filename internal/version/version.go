package version

// Build information, overridden at build time with -ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return "harvester " + Version + " (commit: " + Commit + ", built: " + BuildDate + ")"
}
