package main

import (
	"io"
	"log"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/gateway"
	logsvc "github.com/trezcool/masomo-client/services/logger"
	"github.com/trezcool/masomo-client/storage"
)

// gatewayBuilder builds the Gateway once flags are parsed; an empty baseURL keeps the
// configured one.
type gatewayBuilder func(baseURL string) (*gateway.Gateway, error)

type storageResult struct {
	dig.Out
	Storage core.Storage
	Closer  io.Closer `name:"storageCloser"`
}

func newStorage(conf *core.Config, logger core.Logger) (storageResult, error) {
	// the token must outlive the process
	if conf.Storage.Driver == "" {
		conf.Storage.Driver = storage.DriverFile
	}
	s, closer, err := storage.New(conf)
	if err != nil {
		logger.Error("opening storage", err)
		return storageResult{}, err
	}
	return storageResult{Storage: s, Closer: closer}, nil
}

func newGatewayBuilder(conf *core.Config, store core.Storage, logger core.Logger) gatewayBuilder {
	return func(baseURL string) (*gateway.Gateway, error) {
		opts := []gateway.Option{gateway.WithLogger(logger)}
		if baseURL != "" {
			opts = append(opts, gateway.WithBaseURL(baseURL))
		}
		gw, _, err := gateway.BuildFromConfig(conf, store, opts...)
		return gw, err
	}
}

// newContainer returns the dependency injection dig.Container of the CLI.
func newContainer() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(logsvc.New))
	must(c.Provide(newStorage))
	must(c.Provide(newGatewayBuilder))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
