// Package version exposes the build identity of an errdispatch binary.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/errdispatch/version.Version=1.0.0" ./cmd/gameserver
//
// Values left empty are filled from the VCS stamp the Go toolchain embeds.
package version
