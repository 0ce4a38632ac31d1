// Package version exposes the build version stamped at link time.
package version

// Version is replaced at build time via -ldflags.
var Version = "dev"
