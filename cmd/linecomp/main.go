package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/atinylittleshell/linecomp/internal/styles"
)

var BUILD_VERSION = "dev"

func main() {
	err := newRootCmd().Execute()

	var exit exitError
	if errors.As(err, &exit) {
		os.Exit(int(exit))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR("linecomp: "+err.Error()))
		os.Exit(1)
	}
}
