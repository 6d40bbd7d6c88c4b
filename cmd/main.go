package main

import (
	"os"

	"github.com/germain250/quizly/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
