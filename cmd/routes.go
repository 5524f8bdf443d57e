package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crossroad/config"
	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/infra/sumo"
)

var routesOut string

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Write the SUMO route file for the intersection",
	RunE:  writeRoutes,
}

func init() {
	routesCmd.Flags().StringVarP(&routesOut, "out", "o", "", "output path (defaults to simulator.route_file)")
	rootCmd.AddCommand(routesCmd)
}

func writeRoutes(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := routesOut
	if path == "" {
		path = cfg.Simulator.RouteFile
	}
	vt := sumo.DefaultVehicleType(cfg.Simulation.CruiseSpeedMPS)
	if err := sumo.WriteRouteFile(path, vt, model.DefaultRouteTable()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

	if cfg.Simulator.SUMOConfig == "" {
		return nil
	}
	bin, err := sumo.Locate(cfg.Simulation.IsHeadless())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(bin.Args(cfg.Simulator.SUMOConfig, "tripinfo.xml"), " "))
	return nil
}
