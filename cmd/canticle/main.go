package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Ctrl-C already told the user everything they need.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "canticle: %v\n", err)
		}
		os.Exit(1)
	}
}
