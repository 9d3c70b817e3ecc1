// Command registry-server serves the TEE attestation registry API.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/tee-attestation-registry/cmd/flags"
	"github.com/ruteri/tee-attestation-registry/httpserver"
	"github.com/ruteri/tee-attestation-registry/interfaces"
	"github.com/ruteri/tee-attestation-registry/registry"
	"github.com/ruteri/tee-attestation-registry/storage"
)

func main() {
	app := &cli.App{
		Name:  "registry-server",
		Usage: "Serve the TEE attestation registry API",
		Flags: append([]cli.Flag{
			flags.ListenAddrFlag,
			flags.StorageFlag,
			flags.AdminFlag,
		}, flags.CommonFlags...),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	storageURI := cCtx.String(flags.StorageFlag.Name)
	store, err := storage.StorageBackendFor(storageURI, logger)
	if err != nil {
		logger.Error("Failed to create storage backend", "uri", storageURI, "err", err)
		return err
	}
	if !store.Available(cCtx.Context) {
		logger.Warn("Storage backend not reachable at startup", "uri", store.LocationURI())
	}

	admin := interfaces.Identity(cCtx.String(flags.AdminFlag.Name))
	reg, err := registry.NewRegistry(cCtx.Context, store, admin, logger)
	if err != nil {
		logger.Error("Failed to open registry", "err", err)
		return err
	}

	handler := httpserver.NewHandler(reg, logger, nil)
	server, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")
	return nil
}
