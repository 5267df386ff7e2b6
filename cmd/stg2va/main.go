package main

import (
	"os"

	"github.com/stg-lang/stg/cmd/stg2va/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
