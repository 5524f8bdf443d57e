package sumo

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kilianp07/crossroad/core/sim"
)

// HomeEnv names the variable pointing at the SUMO installation.
const HomeEnv = "SUMO_HOME"

// Binary is a resolved simulator executable.
type Binary struct {
	Path string
	GUI  bool
}

// Locate resolves sumo (headless) or sumo-gui under $SUMO_HOME/bin.
func Locate(headless bool) (Binary, error) {
	return locate(os.Getenv(HomeEnv), headless)
}

func locate(home string, headless bool) (Binary, error) {
	if home == "" {
		return Binary{}, fmt.Errorf("%w: please declare environment variable %s", sim.ErrMissingEnvironment, HomeEnv)
	}
	name := "sumo-gui"
	if headless {
		name = "sumo"
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(home, "bin", name)
	info, err := os.Stat(path)
	if err != nil {
		return Binary{}, fmt.Errorf("%w: %s: %v", sim.ErrMissingEnvironment, path, err)
	}
	if info.IsDir() {
		return Binary{}, fmt.Errorf("%w: %s is a directory", sim.ErrMissingEnvironment, path)
	}
	return Binary{Path: path, GUI: !headless}, nil
}

// Args returns the command line starting the simulator on configFile with
// trip statistics written to tripinfo.
func (b Binary) Args(configFile, tripinfo string) []string {
	args := []string{b.Path, "-c", configFile}
	if tripinfo != "" {
		args = append(args, "--tripinfo-output", tripinfo)
	}
	return args
}
