package main

import (
	"os"

	"github.com/stonk0105/volleysched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
