// Command drills runs the exercises from the command line: the
// demonstration, single operations, ad-hoc checks and check catalogs.
package main

import (
	"os"

	"github.com/liamcoop/drills/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
