package app

import (
	"github.com/spf13/pflag"
)

// CliOptions is implemented by option structs that bind themselves to
// command line flags.
type CliOptions interface {
	// AddFlags registers the options' flags on fs.
	AddFlags(fs *pflag.FlagSet)

	// Validate runs after flag parsing and configuration file loading.
	Validate() []error
}
