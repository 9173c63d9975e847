package main

import (
	"context"
	"os"

	"agvfaults/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
