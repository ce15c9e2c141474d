package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/nixgraphgo/internal/app"
	"github.com/vk/nixgraphgo/internal/cli"
)

// main is the entrypoint for the nixgraph application.
func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, errW io.Writer, args []string) error {
	cmd := cli.NewRootCommand(outW, errW, func(ctx context.Context, cfg *app.Config, outW, errW io.Writer) error {
		return app.NewApp(outW, errW, cfg).Run(ctx, cfg)
	})
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
