package version

// Version is set at build time with -ldflags "-X .../internal/version.Version=<tag>".
var Version = "dev"
