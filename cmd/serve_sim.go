package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crossroad/app"
	"github.com/kilianp07/crossroad/config"
)

var serveSimCmd = &cobra.Command{
	Use:   "serve-sim",
	Short: "Serve the kinematic simulator over the MQTT bridge",
	RunE:  serveSim,
}

func init() {
	rootCmd.AddCommand(serveSimCmd)
}

func serveSim(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return app.ServeSimulator(ctx, cfg)
}
