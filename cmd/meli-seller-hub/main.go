// Package main is the entry point for the meli-seller-hub server.
package main

import (
	"os"

	"github.com/vieirasantos/meli-seller-hub/cmd/meli-seller-hub/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
