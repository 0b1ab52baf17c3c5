package main

import (
	"fmt"
	"os"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/cli"
)

func main() {
	app := &cli.App{Resolver: assistant.NewQueryResolver()}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
