package main

import (
	"os"

	"github.com/bnema/uccx-chat-client/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
