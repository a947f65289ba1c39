package main

import (
	"os"

	"github.com/wellwelwel/jpegr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
