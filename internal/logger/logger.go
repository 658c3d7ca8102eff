package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ct-host/internal/config"
)

var (
	defaultLogger *Logger
)

// Logger holds one stdlib logger per level so levels can be
// silenced independently of each other.
type Logger struct {
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// LogLevel identifies a logging threshold.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// GetLogLevelFromString converts a level name into a LogLevel.
func GetLogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

/**
 * Initialize the logging system
 * @param {LogConfig} cfg - Log level and output path
 * @param {string} tag - Invoking tool name, prepended to every line
 * @description
 * - "console" or an empty path logs to stdout
 * - Otherwise the log directory is created and the file opened for append
 * - Falling back to stdout on file errors keeps the invocation running
 */
func InitLogger(cfg *config.LogConfig, tag string) {
	var output io.Writer

	if cfg.Path == "console" || cfg.Path == "" {
		output = os.Stdout
	} else {
		output = setupLogFileOutput(cfg.Path)
	}

	logLevel := GetLogLevelFromString(cfg.Level)

	flags := log.LstdFlags
	prefix := func(level string) string {
		return fmt.Sprintf("[%s] %s: ", tag, level)
	}

	defaultLogger = &Logger{
		debugLogger: log.New(io.Discard, prefix("DEBUG"), flags),
		infoLogger:  log.New(io.Discard, prefix("INFO"), flags),
		warnLogger:  log.New(io.Discard, prefix("WARN"), flags),
		errorLogger: log.New(io.Discard, prefix("ERROR"), flags),
	}

	if logLevel <= DEBUG {
		defaultLogger.debugLogger.SetOutput(output)
	}
	if logLevel <= INFO {
		defaultLogger.infoLogger.SetOutput(output)
	}
	if logLevel <= WARN {
		defaultLogger.warnLogger.SetOutput(output)
	}
	if logLevel <= ERROR {
		defaultLogger.errorLogger.SetOutput(os.Stderr)
		if output != os.Stdout {
			defaultLogger.errorLogger.SetOutput(io.MultiWriter(os.Stderr, output))
		}
	}
}

// setupLogFileOutput opens the log file for appending, creating the
// directory first. Any failure falls back to stdout.
func setupLogFileOutput(logPath string) io.Writer {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create log directory failed: %v\n", err)
		return os.Stdout
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file failed: %v\n", err)
		return os.Stdout
	}

	return file
}

// Debug logs at debug level.
func Debug(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.debugLogger.Println(v...)
	}
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.debugLogger.Printf(format, v...)
	}
}

// Info logs at info level.
func Info(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.infoLogger.Println(v...)
	}
}

// Infof logs a formatted message at info level.
func Infof(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.infoLogger.Printf(format, v...)
	}
}

// Warn logs at warn level.
func Warn(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.warnLogger.Println(v...)
	}
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.warnLogger.Printf(format, v...)
	}
}

// Error logs at error level.
func Error(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.errorLogger.Println(v...)
	}
}

// Errorf logs a formatted message at error level.
func Errorf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.errorLogger.Printf(format, v...)
	}
}

// Fatal logs at error level and exits with status 1.
func Fatal(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.errorLogger.Fatal(v...)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", v...)
		os.Exit(1)
	}
}

// Fatalf logs a formatted message at error level and exits with status 1.
func Fatalf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.errorLogger.Fatalf(format, v...)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", v...)
		os.Exit(1)
	}
}
