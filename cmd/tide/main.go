// Command tide prints tide predictions for a station computed from the
// ft03/ft07/ft08 constituent datasets.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
