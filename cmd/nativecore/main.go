// Package main provides the entry point for the nativecore CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/nativecore/cmd/nativecore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
