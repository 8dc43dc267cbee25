// Command cloudfx generates cloud noise volumes and renders cloud and blur
// frames on the CPU device.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "cloudfx:", err)
		os.Exit(1)
	}
}
