package main

import (
	"os"

	"github.com/zeu5/frozen-lake-rl/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
