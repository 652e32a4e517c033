// Command flowcanvas serves the flow editor and its pipeline validator.
package main

import (
	"fmt"
	"os"

	"flowcanvas/internal/observability"
)

func main() {
	err := newRootCmd().Execute()
	observability.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
