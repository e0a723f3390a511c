package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"polynav/config"
	"polynav/server"
)

const defaultConfigFile = "polynav.yaml"

// ServeCmd runs the HTTP route service
func ServeCmd() *cobra.Command {
	var configFile string
	c := &cobra.Command{
		Use:   "serve",
		Short: "route server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			gin.SetMode(gin.ReleaseMode)
			srv, err := server.New(cfg, log.Default())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	c.Flags().StringVar(&configFile, "config", defaultConfigFile, "config file")
	return c
}

// loadConfig reads path, falling back to defaults when the default file is absent
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == defaultConfigFile {
			log.Printf("ℹ️  No %s found, using defaults\n", path)
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
