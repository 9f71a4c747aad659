package main

import (
	"fmt"
	"os"

	"coursegen-backend/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.AppLoader).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
