// Command altbc computes angular-limited three-body correlations of
// structures and trajectories.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "altbc:", err)
		os.Exit(1)
	}
}
