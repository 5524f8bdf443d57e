package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		runFlags.volume, runFlags.noGUI, runFlags.optimizer, runFlags.seed = 0, false, "", 0
		routesOut = ""
		releasesFlags.path, releasesFlags.runID, releasesFlags.route = "releases.db", "", ""
		releasesFlags.minDel, releasesFlags.serve, releasesFlags.token = 0, "", ""
		cfgPath = ""
		_ = runCmd.Flags().Set("volume", "0")
		runCmd.Flags().Lookup("volume").Changed = false
		runCmd.Flags().Lookup("seed").Changed = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

const shortRun = `simulation:
  horizon_seconds: 20
optimizer:
  type: fifo
logging:
  level: error
`

func TestRunPrintsHeadline(t *testing.T) {
	out, err := execute(t, "", "run", "-c", writeConfig(t, shortRun), "--volume", "2000")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Delay time of 2000 vehicles/hr: "), out)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "s/vehicle"), out)
}

func TestRunPromptsForVolume(t *testing.T) {
	out, err := execute(t, "1500\n", "run", "-c", writeConfig(t, shortRun))
	require.NoError(t, err)
	assert.Contains(t, out, "Delay time of 1500 vehicles/hr")
}

func TestRunRejectsBadVolume(t *testing.T) {
	_, err := execute(t, "lots\n", "run", "-c", writeConfig(t, shortRun))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid volume")
}

func TestRunUnknownOptimizer(t *testing.T) {
	_, err := execute(t, "", "run", "-c", writeConfig(t, shortRun), "--volume", "100", "--optimizer", "genetic")
	require.Error(t, err)
}

func TestPromptVolume(t *testing.T) {
	var prompt bytes.Buffer
	v, err := promptVolume(strings.NewReader("  900 \n"), &prompt)
	require.NoError(t, err)
	assert.Equal(t, 900.0, v)
	assert.Equal(t, volumePrompt, prompt.String())

	_, err = promptVolume(strings.NewReader("-3\n"), &prompt)
	assert.Error(t, err)
	_, err = promptVolume(strings.NewReader(""), &prompt)
	assert.Error(t, err)
}

func TestRoutesWritesFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "cross.rou.xml")
	out, err := execute(t, "", "routes", "-c", writeConfig(t, shortRun), "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `id="route_WE"`)
}

func TestRunThenQueryReleaseLog(t *testing.T) {
	db := filepath.Join(t.TempDir(), "releases.db")
	cfg := shortRun + `metrics:
  sinks:
    - type: sqlite
      conf:
        path: ` + db + `
`
	_, err := execute(t, "", "run", "-c", writeConfig(t, cfg), "--volume", "3000")
	require.NoError(t, err)

	out, err := execute(t, "", "releases", "--path", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], `"run_id":`)
	assert.Contains(t, lines[0], `"vehicle_id":`)

	out, err = execute(t, "", "releases", "--path", db, "--run-id", "missing")
	require.NoError(t, err)
	assert.Empty(t, out)
}
