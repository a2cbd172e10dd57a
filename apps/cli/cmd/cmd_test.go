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

const failingRun = `{"Action":"start","Package":"example.com/calc"}
{"Action":"run","Package":"example.com/calc","Test":"TestAdd"}
{"Action":"pass","Package":"example.com/calc","Test":"TestAdd","Elapsed":0.01}
{"Action":"run","Package":"example.com/calc","Test":"TestDiv"}
{"Action":"output","Package":"example.com/calc","Test":"TestDiv","Output":"    calc_test.go:12: division by zero\n"}
{"Action":"fail","Package":"example.com/calc","Test":"TestDiv","Elapsed":0.002}
{"Action":"fail","Package":"example.com/calc","Elapsed":0.02}
`

const passingRun = `{"Action":"run","Package":"example.com/calc","Test":"TestAdd"}
{"Action":"pass","Package":"example.com/calc","Test":"TestAdd","Elapsed":0.01}
{"Action":"pass","Package":"example.com/calc","Elapsed":0.02}
`

// runCLI executes the root command with fresh global flag values
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	configFlag = ""
	logLevelFlag = "warn"
	outputFlag = "console"
	followFlag = false
	forceInit = false
	versionShort = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	code := run(args)
	return code, stdout.String(), stderr.String()
}

func TestReport_FailingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(failingRun), 0o644))

	code, out, _ := runCLI(t, "", "report", path, "--width", "20")
	assert.Equal(t, ExitTestFailure, code)
	assert.Contains(t, out, "Running tests with dromus")
	assert.Contains(t, out, strings.Repeat("=", 20))
	assert.Contains(t, out, "TestDiv")
	assert.Contains(t, out, "division by zero")
	assert.Contains(t, out, "Some tests failed.")
	assert.NotContains(t, out, "\x1b[", "colours are off for non-terminal output")
}

func TestReport_Stdin(t *testing.T) {
	code, out, _ := runCLI(t, passingRun, "report")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "All tests passed!")
}

func TestReport_JSONOutput(t *testing.T) {
	code, out, _ := runCLI(t, passingRun, "report", "--output", "json")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, `"text":"example.com/calc"`)
	assert.Contains(t, out, `"session":"`)
}

func TestReport_UnknownOutput(t *testing.T) {
	code, _, errOut := runCLI(t, passingRun, "report", "--output", "xml")
	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, errOut, "unknown output format")
}

func TestReport_MissingFile(t *testing.T) {
	code, _, _ := runCLI(t, "", "report", filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, ExitInputError, code)
}

func TestReport_FollowNeedsOneFile(t *testing.T) {
	code, _, _ := runCLI(t, "", "report", "--follow")
	assert.Equal(t, ExitUsageError, code)
}

func TestReport_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dromus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("noSuchOption: true\n"), 0o644))

	code, _, _ := runCLI(t, passingRun, "report", "--config", path)
	assert.Equal(t, ExitConfigError, code)
}

func TestConfig_PrintsResolvedOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dromus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxStackTraceDepth: 3\nshowTimings: false\n"), 0o644))

	code, out, _ := runCLI(t, "", "config", "--config", path, "--stack-traces")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "maxStackTraceDepth: 3")
	assert.Contains(t, out, "showTimings: false")
	assert.Contains(t, out, "showStackTraces: true")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	code, out, _ := runCLI(t, "", "init", dir)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Created:")

	data, err := os.ReadFile(filepath.Join(dir, "dromus.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "maxStackTraceDepth: 10")

	code, _, errOut := runCLI(t, "", "init", dir)
	assert.Equal(t, ExitConfigError, code)
	assert.Contains(t, errOut, "already exists")

	code, _, _ = runCLI(t, "", "init", dir, "--force")
	assert.Equal(t, ExitSuccess, code)
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "dromus version")
	assert.Contains(t, out, "Go: go")

	code, out, _ = runCLI(t, "", "version", "--short")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, version+"\n", out)
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			code, out, _ := runCLI(t, "", "completion", shell)
			assert.Equal(t, ExitSuccess, code)
			assert.Contains(t, out, "dromus")
		})
	}

	code, _, _ := runCLI(t, "", "completion", "tcsh")
	assert.Equal(t, ExitUsageError, code)
}

func TestRun_BadLogLevel(t *testing.T) {
	code, _, _ := runCLI(t, "", "version", "--log-level", "loud")
	assert.Equal(t, ExitUsageError, code)
}
