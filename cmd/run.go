package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crossroad/app"
	"github.com/kilianp07/crossroad/config"
	coremon "github.com/kilianp07/crossroad/core/monitoring"
	"github.com/kilianp07/crossroad/infra/logger"
	"github.com/kilianp07/crossroad/infra/monitoring"
)

const volumePrompt = "Input the vehicle amount that appear in an hour: "

var runFlags struct {
	volume    float64
	noGUI     bool
	optimizer string
	seed      int64
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scheduling experiment and print the average delay",
	RunE:  runExperiment,
}

func init() {
	f := runCmd.Flags()
	f.Float64Var(&runFlags.volume, "volume", 0, "vehicles per hour; prompted on stdin when unset")
	f.BoolVar(&runFlags.noGUI, "nogui", false, "run the simulator without its GUI")
	f.StringVar(&runFlags.optimizer, "optimizer", "", "optimizer name (fifo, annealing)")
	f.Int64Var(&runFlags.seed, "seed", 0, "random seed")
	rootCmd.AddCommand(runCmd)
}

func runExperiment(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	defer coremon.Flush(2 * time.Second)
	defer coremon.Recover()

	svc, err := app.New(cfg)
	if err != nil {
		coremon.CaptureException(err, map[string]string{"stage": "setup"})
		return err
	}
	defer svc.Close()

	report, err := svc.Run(ctx)
	if err != nil {
		coremon.CaptureException(err, map[string]string{"stage": "run", "run_id": report.RunID})
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), report.Headline(cfg.Simulation.HourlyVolume))
	return err
}

// loadRunConfig applies flag overrides and asks for the volume when neither
// the file, the environment nor the flags provide one.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("volume") {
		cfg.Simulation.HourlyVolume = runFlags.volume
	}
	if runFlags.noGUI {
		headless := true
		cfg.Simulation.Headless = &headless
	}
	if runFlags.optimizer != "" {
		cfg.Optimizer.Type = runFlags.optimizer
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = runFlags.seed
	}
	if cfg.Simulation.HourlyVolume == 0 {
		v, err := promptVolume(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		cfg.Simulation.HourlyVolume = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func promptVolume(in io.Reader, out io.Writer) (float64, error) {
	if _, err := fmt.Fprint(out, volumePrompt); err != nil {
		return 0, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("read volume: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q: %w", strings.TrimSpace(line), err)
	}
	if v < 0 {
		return 0, fmt.Errorf("volume must not be negative")
	}
	return v, nil
}
