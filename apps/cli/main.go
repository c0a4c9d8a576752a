// Command masomo drives the Masomo API from a terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/dig"

	"github.com/trezcool/masomo-client/core"
)

type runParams struct {
	dig.In

	Conf   *core.Config
	Logger core.Logger
	Build  gatewayBuilder
	Closer io.Closer `name:"storageCloser"`
}

func main() {
	c := newContainer()

	var code int
	err := c.Invoke(func(p runParams) {
		defer func() {
			if err := p.Closer.Close(); err != nil {
				p.Logger.Error("closing storage", err)
			}
		}()

		cli := &commandLine{build: p.Build, out: os.Stdout}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		root := cli.rootCommand(p.Conf)
		if err := root.ExecuteContext(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			code = 1
		}
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	os.Exit(code)
}
