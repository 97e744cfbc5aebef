package main

import (
	"context"
	"os"

	"github.com/urbanflow/client/cmd/cli"
	"github.com/urbanflow/client/internal/common"
)

func main() {
	ctx, cleanup := common.WithInterrupt(context.Background())

	err := cli.Execute(ctx, os.Args[1:])
	cleanup()

	if err != nil {
		os.Exit(1)
	}
}
