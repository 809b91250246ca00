package main

import (
	"context"
	"os"

	"github.com/just-nibble/starsync/cmd/starsync/app"
)

func main() {
	if err := app.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
