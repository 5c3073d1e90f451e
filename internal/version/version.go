// ABOUTME: Build identification constants
// ABOUTME: Reported by the mixpad tool and example programs
package version

const (
	// Version is the semantic version of this build.
	Version = "0.1.0"

	// Product is the public name of the project.
	Product = "Mixpool"

	// Manufacturer identifies the project maintainers.
	Manufacturer = "Mixpool Project"
)
