package main

import (
	"fmt"
	"os"

	"github.com/treyhulse/kcsf-ops/internal"
)

func main() {
	if err := internal.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
