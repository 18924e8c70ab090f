// Package main is the entry point for the msh CLI client.
package main

import (
	"github.com/vieirasantos/meli-seller-hub/cmd/msh/cmd"
)

func main() {
	cmd.Execute()
}
