package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultLogFile   = "./logs/powchain.log"
	defaultMaxSizeMB = 100
	defaultMaxAge    = 7
)

var (
	mu     sync.RWMutex
	logger = log.New(newWriter(), "", log.Ldate|log.Ltime|log.Lmicroseconds)
	debug  = os.Getenv("LOG_DEBUG") != ""
)

// newWriter picks the log sink from the environment. LOGFILE=stdout bypasses
// rotation, anything else is a file name under ./logs rotated by lumberjack.
func newWriter() io.Writer {
	logFile := os.Getenv("LOGFILE")
	if logFile == "stdout" {
		return os.Stdout
	}
	filename := defaultLogFile
	if logFile != "" {
		filename = "./logs/" + logFile
	}
	return &lumberjack.Logger{
		Filename: filename,
		MaxSize:  envInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB), // megabytes
		MaxAge:   envInt("LOGFILE_MAX_AGE_DAYS", defaultMaxAge),   // days
	}
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// SetOutput redirects all categories to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

// SetDebug toggles Debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = enabled
}

func write(level, color, category string, content ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[%s][%s]%s", color, level, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

func Info(category string, content ...interface{}) {
	write("INFO", ColorGreen, category, content...)
}

func Error(category string, content ...interface{}) {
	write("ERROR", ColorRed, category, content...)
}

func Warn(category string, content ...interface{}) {
	write("WARN", ColorYellow, category, content...)
}

func Debug(category string, content ...interface{}) {
	mu.RLock()
	enabled := debug
	mu.RUnlock()
	if !enabled {
		return
	}
	write("DEBUG", ColorBlue, category, content...)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
