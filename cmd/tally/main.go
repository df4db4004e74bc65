// Command tally serves posts and votes over gRPC and REST
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jrife/tally/config"
	"github.com/jrife/tally/storage/kv/plugins"
	"github.com/jrife/tally/tally/auth"
	"github.com/jrife/tally/tally/service"
	"github.com/jrife/tally/tally/storage"
	"github.com/jrife/tally/tally/voting"
	"github.com/jrife/tally/transport"
	"github.com/jrife/tally/transport/frontends"
	grpcfrontend "github.com/jrife/tally/transport/frontends/grpc"
	"github.com/jrife/tally/transport/frontends/rest"
	"go.uber.org/zap"
)

func main() {
	var configPath string
	var allowAnonymous bool
	var grpcAddr string
	var httpAddr string
	var logLevel string
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.BoolVar(&allowAnonymous, "allow-anonymous", false, "let unidentified callers insert, vote and remove")
	flag.StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address, overrides listen.grpc")
	flag.StringVar(&httpAddr, "http-addr", "", "REST listen address, overrides listen.http")
	flag.StringVar(&logLevel, "log-level", "", "log level, overrides log.level")
	flag.Parse()

	cfg, err := config.Load(configPath)

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}

	// only flags given on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "allow-anonymous":
			cfg.Auth.AllowAnonymous = allowAnonymous
		case "grpc-addr":
			cfg.Listen.GRPC = grpcAddr
		case "http-addr":
			cfg.Listen.HTTP = httpAddr
		case "log-level":
			cfg.Log.Level = logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}

	logger, err := cfg.Log.Logger()

	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %s\n", err.Error())
		os.Exit(1)
	}

	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("tally exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	rootStore, err := plugins.Plugin(cfg.Storage.Driver).NewRootStore(cfg.Storage.PluginOptions())

	if err != nil {
		return fmt.Errorf("could not open %s store: %w", cfg.Storage.Driver, err)
	}

	store := storage.New(storage.StoreConfig{
		Logger:        logger,
		RootStore:     rootStore,
		MaxPostSize:   cfg.Storage.MaxPostSize,
		MaxLedgerSize: cfg.Storage.MaxLedgerSize,
	})

	defer store.Close()

	policy, err := voting.ParseOppositeVote(cfg.Voting.OppositeVote)

	if err != nil {
		return err
	}

	resolver, err := auth.NewResolver(cfg.Auth.Identity, cfg.Auth.Header)

	if err != nil {
		return err
	}

	tlsConfig, err := cfg.Listen.TLS.Build()

	if err != nil {
		return err
	}

	svc := service.New(service.Config{
		Logger: logger,
		Guard:  auth.NewGuard(cfg.Auth.AllowAnonymous),
		Engine: voting.New(voting.EngineConfig{
			Logger:       logger,
			Store:        store,
			OppositeVote: policy,
		}),
	})

	options := frontends.Options{
		Server:    transport.NewServer(svc),
		Resolver:  resolver,
		Logger:    logger,
		TLSConfig: tlsConfig,
	}

	listeners := map[string]frontends.Frontend{}

	if cfg.Listen.GRPC != "" {
		listeners[cfg.Listen.GRPC] = &grpcfrontend.Frontend{}
	}

	if cfg.Listen.HTTP != "" {
		listeners[cfg.Listen.HTTP] = &rest.Frontend{}
	}

	logger.Info("starting tally",
		zap.String("driver", cfg.Storage.Driver),
		zap.Bool("allow_anonymous", cfg.Auth.AllowAnonymous),
		zap.String("identity", cfg.Auth.Identity),
		zap.String("opposite_vote", policy.String()),
	)

	var wg sync.WaitGroup
	errs := make(chan error, len(listeners))
	started := []frontends.Frontend{}

	stopAll := func() {
		for _, frontend := range started {
			if err := frontend.Stop(); err != nil {
				logger.Warn("could not stop frontend", zap.Error(err))
			}
		}
	}

	for address, frontend := range listeners {
		if err := frontend.Init(options); err != nil {
			stopAll()
			wg.Wait()

			return fmt.Errorf("could not initialize frontend for %s: %w", address, err)
		}

		listener, err := net.Listen("tcp", address)

		if err != nil {
			stopAll()
			wg.Wait()

			return fmt.Errorf("could not listen on %s: %w", address, err)
		}

		started = append(started, frontend)
		wg.Add(1)

		go func(frontend frontends.Frontend, listener net.Listener) {
			defer wg.Done()

			if err := frontend.Listen(listener); err != nil {
				errs <- err
			}
		}(frontend, listener)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	var result error

	select {
	case sig := <-signals:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errs:
		result = fmt.Errorf("frontend failed: %w", err)
	}

	stopAll()
	wg.Wait()

	return result
}
