// Command sandbox serves the Masomo API from memory for local development.
package main

import (
	"context"
	"fmt"

	echoapi "github.com/trezcool/masomo-client/apps/sandbox/echo"
	"github.com/trezcool/masomo-client/core"
	logsvc "github.com/trezcool/masomo-client/services/logger"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.New(conf)

	server := echoapi.NewServer(&echoapi.Options{
		Address: conf.Sandbox.Address,
		Debug:   conf.Debug,
		Logger:  logger,
	})

	logger.Info(fmt.Sprintf("Sandbox listening on %s : version %q", conf.Sandbox.Address, conf.Build))
	defer logger.Info("Sandbox stopped")

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Sandbox.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
