package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/anyref/internal/bench"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := New()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRegisterLoggingFlags(t *testing.T) {
	cmd := &cobra.Command{}
	RegisterLoggingFlags(cmd.Flags())

	assert.NotNil(t, cmd.Flags().Lookup(FormatFlagName))
	assert.NotNil(t, cmd.Flags().Lookup(LevelFlagName))
	assert.NotNil(t, cmd.Flags().Lookup(OutputFlagName))
}

func TestLoggerLevelFromCommand(t *testing.T) {
	tests := []struct {
		level       string
		expectLevel slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cmd := &cobra.Command{}
			RegisterLoggingFlags(cmd.Flags())
			require.NoError(t, cmd.Flags().Set(LevelFlagName, tt.level))

			level, err := loggerLevelFromCommand(cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.expectLevel, level)
		})
	}
}

func TestGetBaseLoggerRejects(t *testing.T) {
	cmd := &cobra.Command{}
	RegisterLoggingFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Set(FormatFlagName, "xml"))
	_, err := GetBaseLogger(cmd)
	require.ErrorContains(t, err, "--logformat")
}

func TestRunTable(t *testing.T) {
	out, _, err := execute(t, "--iterations", "200", "--elements", "16", "--workers", "2")
	require.NoError(t, err)
	for _, name := range []string{"Workload", "scalar", "view-at", "view-sub", "shared-readers", "exclusive-writer"} {
		assert.Contains(t, out, name)
	}
}

func TestRunJSON(t *testing.T) {
	out, _, err := execute(t, "-o", "json", "--iterations", "100", "--elements", "8", "--workers", "3")
	require.NoError(t, err)
	var report bench.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 100, report.Config.Iterations)
	require.Len(t, report.Results, 5)
}

func TestRunLogsToStderr(t *testing.T) {
	_, errOut, err := execute(t, "--iterations", "10", "--elements", "4", "--workers", "1",
		"--loglevel", "info", "--logformat", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"workload completed"`)
}

func TestRunMemProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.prof")
	_, _, err := execute(t, "--iterations", "10", "--elements", "4", "--memprofile", path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunInvalid(t *testing.T) {
	_, _, err := execute(t, "--iterations", "0")
	require.ErrorIs(t, err, bench.ErrInvalidConfig)

	_, _, err = execute(t, "--format", "yaml")
	require.Error(t, err)

	_, _, err = execute(t, "extra")
	require.Error(t, err)
}
