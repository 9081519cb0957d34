package version

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

const flagName = "version"
const flagShorthand = "V"

// versionValue is a tri-state flag value, --version may be bare, a bool,
// or the string "all".
type versionValue int

const (
	versionFalse versionValue = iota
	versionTrue
	versionAll
)

var v = versionFalse

func (v *versionValue) Set(s string) error {
	if s == "all" {
		*v = versionAll
		return nil
	}
	b, err := strconv.ParseBool(s)
	if b {
		*v = versionTrue
	} else {
		*v = versionFalse
	}
	return err
}

func (v *versionValue) String() string {
	return strconv.FormatBool(*v == versionTrue)
}

func (v *versionValue) Type() string {
	return "version"
}

// AddFlags registers the version flag so that it points at the package
// level value.
func AddFlags(fs *pflag.FlagSet) {
	fs.VarP(&v, flagName, flagShorthand,
		"Print version information and quit, --version=all prints the full build info.")
	// "--version" counts as "--version=true"
	fs.Lookup(flagName).NoOptDefVal = "true"
}

// PrintAndExitIfRequested checks whether the version flag was passed and,
// if so, prints the version and exits.
func PrintAndExitIfRequested(appName string) {
	switch v {
	case versionAll:
		b, _ := json.MarshalIndent(Get(), "", "  ")
		fmt.Printf("%s\n", b)
		os.Exit(0)
	case versionTrue:
		fmt.Printf("%s %s\n", appName, Get().GitVersion)
		os.Exit(0)
	}
}
