package config

import (
	"fmt"
	"os"
)

// exitFunc is swapped out in tests.
var exitFunc = os.Exit

// Exitf prints a formatted message to stderr and exits with status 1.
// Command mains use it as their single fatal-error path.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(1)
}
