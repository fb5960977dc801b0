package version

// Version is the service version, overridable at build time with
// -ldflags "-X github.com/handoff-labs/handoff/internal/version.Version=...".
var Version = "0.1.0"
