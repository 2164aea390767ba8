package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	FormatFlagName = "logformat"

	FormatJSON = "json"
	FormatText = "text"
)

const (
	LevelFlagName = "loglevel"

	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

const (
	OutputFlagName = "logoutput"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

var (
	logFormats = []string{FormatText, FormatJSON}
	logLevels  = []string{LevelWarn, LevelDebug, LevelInfo, LevelError}
	logOutputs = []string{OutputStderr, OutputStdout}
)

// RegisterLoggingFlags adds the log format, level and output flags to flagset.
// The first entry of each option list is the default.
func RegisterLoggingFlags(flagset *pflag.FlagSet) {
	flagset.String(FormatFlagName, logFormats[0], fmt.Sprintf("log format, one of %v", logFormats))
	flagset.String(LevelFlagName, logLevels[0], fmt.Sprintf("log level, one of %v", logLevels))
	flagset.String(OutputFlagName, logOutputs[0], fmt.Sprintf("log destination, one of %v", logOutputs))
}

// GetBaseLogger builds a slog.Logger from the logging flags of cmd.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := loggerLevelFromCommand(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to get log level: %w", err)
	}
	format, err := oneOf(cmd.Flags(), FormatFlagName, logFormats)
	if err != nil {
		return nil, err
	}
	output, err := oneOf(cmd.Flags(), OutputFlagName, logOutputs)
	if err != nil {
		return nil, err
	}

	var w io.Writer
	switch output {
	case OutputStdout:
		w = cmd.OutOrStdout()
	case OutputStderr:
		w = cmd.ErrOrStderr()
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

func loggerLevelFromCommand(cmd *cobra.Command) (slog.Level, error) {
	level, err := oneOf(cmd.Flags(), LevelFlagName, logLevels)
	if err != nil {
		return slog.LevelWarn, err
	}
	switch level {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, nil
	}
}

func oneOf(flags *pflag.FlagSet, name string, allowed []string) (string, error) {
	v, err := flags.GetString(name)
	if err != nil {
		return "", err
	}
	if !slices.Contains(allowed, v) {
		return "", fmt.Errorf("invalid value %q for --%s, must be one of %v", v, name, allowed)
	}
	return v, nil
}
