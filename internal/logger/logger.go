package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"

	"github.com/palemoky/bingo-hall/internal/config"
)

// maxLogSize 日志文件超过该大小时在启动时轮转
const maxLogSize = 10 * 1024 * 1024

// New builds a logger from the log section of the config.
// The returned closer releases the log file, if any.
func New(cfg config.LogConfig) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	formatter := log.TextFormatter
	switch cfg.Format {
	case "", "text":
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.File != "" {
		f, err := openLogFile(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		out, closer = f, f
	}

	l := log.NewWithOptions(out, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return l, closer, nil
}

// Init builds the logger and installs it as the package default
func Init(cfg config.LogConfig) (*log.Logger, io.Closer, error) {
	l, closer, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.SetDefault(l)
	return l, closer, nil
}

// openLogFile opens path for appending, rotating it first when too large
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		backup := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		_ = os.Rename(path, backup)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// LogPanic logs a recovered panic with stack trace
func LogPanic(l *log.Logger, r any) {
	if l == nil {
		l = log.Default()
	}
	l.Error("panic recovered", "panic", r, "stack", string(debug.Stack()))
}
