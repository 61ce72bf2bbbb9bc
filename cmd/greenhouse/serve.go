package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/greenhouse/internal/api"
	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/infrastructure"
)

type server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

func newServer(cfg *config.Config) (*server, error) {
	infra, err := infrastructure.New(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	router, err := api.NewRouter(infra)
	if err != nil {
		return nil, err
	}

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"steps", len(infra.Steps.List()),
	)

	return &server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	s.http.Start(s.infra.Lifecycle)

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()
	return nil
}

func (s *server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the step API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			srv, err := newServer(cfg)
			if err != nil {
				return err
			}
			if err := srv.Start(); err != nil {
				return err
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
				return err
			}
			srv.infra.Logger.Info("greenhouse stopped")
			return nil
		},
	}
}
