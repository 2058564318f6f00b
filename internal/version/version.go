// ABOUTME: Version and product identification constants
// ABOUTME: Reported by the CLI and in startup logs
package version

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/Resonate-Protocol/resonate-oss/internal/version.Version=..."
var Version = "0.1.0"

const (
	// Product is the product name
	Product = "resonate-oss"

	// Manufacturer is the maker reported alongside the product
	Manufacturer = "Resonate"
)

// String returns the product and version for banners
func String() string {
	return Product + " " + Version
}
