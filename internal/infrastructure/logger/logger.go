package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	TimeFormat string // Go time layout
}

// Profile supplies the defaults for fields a Config leaves empty.
type Profile int

const (
	// Interactive keeps a terminal quiet: warnings and up, console encoding.
	Interactive Profile = iota
	// Unattended logs JSON at info, for kiosks and scripts whose
	// notifications go to the log.
	Unattended
)

// ProfileFor returns Unattended for the production environment.
func ProfileFor(env string) Profile {
	if env == "production" {
		return Unattended
	}
	return Interactive
}

// Resolve fills the empty fields of cfg from the profile. verbose forces
// debug whatever the configured level.
func (p Profile) Resolve(cfg Config, verbose bool) Config {
	level, format := "warn", "console"
	if p == Unattended {
		level, format = "info", "json"
	}
	if cfg.Level == "" {
		cfg.Level = level
	}
	if cfg.Format == "" {
		cfg.Format = format
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaultTimeFormat
	}
	if verbose {
		cfg.Level = "debug"
	}
	return cfg
}

// New creates a logger. Empty fields of cfg, or a nil cfg, take the
// Interactive defaults. Caller locations are recorded at debug level only.
func New(cfg *Config) (*zap.Logger, error) {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c = Interactive.Resolve(c, false)

	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	writer, err := openOutput(c.Output)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if level == zapcore.DebugLevel {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewCore(newEncoder(c), writer, level), opts...), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("logger: unknown level %q", level)
}

// newEncoder colors levels only when writing to a terminal stream.
func newEncoder(c Config) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(c.TimeFormat),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if c.Format != "console" {
		return zapcore.NewJSONEncoder(ec)
	}
	if isStream(c.Output) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

func isStream(output string) bool {
	o := strings.ToLower(output)
	return o == "stdout" || o == "stderr"
}

// openOutput opens the log destination. A file path is created with its
// parent directory; failing to open it is an error.
func openOutput(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o700); err != nil {
		return nil, fmt.Errorf("logger: creating log directory: %w", err)
	}
	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("logger: opening log file: %w", err)
	}
	return zapcore.AddSync(file), nil
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync(logger *zap.Logger) error {
	err := logger.Sync()
	if err != nil && isTerminalSyncError(err) {
		return nil
	}
	return err
}

// isTerminalSyncError matches the EINVAL/ENOTTY that fsync returns on
// stdout and stderr.
func isTerminalSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
