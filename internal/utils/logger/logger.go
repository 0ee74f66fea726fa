// Package logger holds the process-wide zap logger. Console lines go to
// stderr, or to whatever ReplaceStderrWriter installed. An optional log file
// gets the same lines without colour and is appended to, so the pre-build and
// post-build runs of one Unity build end up in the same file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Config selects the verbosity and an optional file the console output is teed to.
type Config struct {
	Level    string
	FilePath string
}

func (c Config) normalized() Config {
	return Config{Level: parseLevel(c.Level).String(), FilePath: strings.TrimSpace(c.FilePath)}
}

// swappableWriter lets tests and the spinner redirect console output without
// rebuilding the zap core.
type swappableWriter struct {
	mu     sync.RWMutex
	writer io.Writer
}

func (w *swappableWriter) Write(p []byte) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.writer == nil {
		return 0, nil
	}
	return w.writer.Write(p)
}

func (w *swappableWriter) Sync() error {
	return nil
}

var (
	mu         sync.Mutex
	sugar      *zap.SugaredLogger
	base       *zap.Logger
	level      = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logFile    *os.File
	active     *Config
	consoleOut = &swappableWriter{writer: os.Stderr}
)

// configure rebuilds the logger for cfg. mu must be held.
func configure(cfg Config) error {
	level.SetLevel(parseLevel(cfg.Level))

	encoderCfg := zap.NewDevelopmentConfig().EncoderConfig
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleCfg := encoderCfg
	// Unity captures hook output into its own log; keep escape codes out of it.
	if term.IsTerminal(int(os.Stderr.Fd())) {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(consoleOut), level),
	}

	if cfg.FilePath != "" {
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(file), level))
	} else {
		closeLogFile()
	}

	base = zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.DPanicLevel),
	)
	sugar = base.Sugar()
	zap.ReplaceGlobals(base)

	active = &cfg
	return nil
}

// openLogFile returns the handle for path, reusing the open one when the path
// is unchanged. mu must be held.
func openLogFile(path string) (*os.File, error) {
	path = filepath.Clean(path)
	if logFile != nil && logFile.Name() == path {
		return logFile, nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %q: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", path, err)
	}

	closeLogFile()
	logFile = file
	return file, nil
}

func closeLogFile() {
	if logFile == nil {
		return
	}
	if err := logFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
	}
	logFile = nil
}

// InitWithConfig configures the global logger, rebuilding it only when cfg
// differs from the running configuration. The returned cleanup function syncs
// the logger and closes the log file.
func InitWithConfig(cfg Config) (*zap.SugaredLogger, func(), error) {
	cfg = cfg.normalized()

	mu.Lock()
	defer mu.Unlock()

	if active == nil || *active != cfg {
		if err := configure(cfg); err != nil {
			return nil, nil, fmt.Errorf("logger initialization failed: %w", err)
		}
	}
	return sugar, cleanupFunc(logFile), nil
}

// Logger returns the global sugared logger, initializing it at info level on first use.
func Logger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()

	if sugar == nil {
		// Without a file nothing in configure can fail.
		_ = configure(Config{}.normalized())
	}
	return sugar
}

func cleanupFunc(file *os.File) func() {
	return func() {
		mu.Lock()
		defer mu.Unlock()

		if base != nil {
			_ = base.Sync()
		}
		if file != nil && file == logFile && active != nil {
			// Keep logging to the console only.
			_ = configure(Config{Level: active.Level})
		}
	}
}

func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	l, err := zapcore.ParseLevel(s)
	if err != nil || l > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return l
}

// ReplaceStderrWriter swaps the writer console output goes to and returns the
// previous one (never nil; defaults to os.Stderr).
func ReplaceStderrWriter(newOut io.Writer) (oldOut io.Writer) {
	if newOut == nil {
		newOut = os.Stderr
	}

	consoleOut.mu.Lock()
	defer consoleOut.mu.Unlock()

	oldOut = consoleOut.writer
	if oldOut == nil {
		oldOut = os.Stderr
	}
	consoleOut.writer = newOut
	return
}
