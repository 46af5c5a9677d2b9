package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// CrawlerLogger writes bracket-tagged console lines, optionally mirrored to a
// per-run log file.
type CrawlerLogger struct {
	file       *os.File
	logger     *log.Logger
	multiWrite io.Writer

	mu       sync.Mutex
	warnings int
	errors   int
}

// NewCrawlerLogger logs to stdout and to logs/<run>/download_<timestamp>.log.
func NewCrawlerLogger(logsDir, runName string) (*CrawlerLogger, error) {
	// Sanitize run name for file system
	sanitized := strings.ReplaceAll(strings.ToLower(runName), " ", "_")

	runDir := filepath.Join(logsDir, sanitized)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(runDir, fmt.Sprintf("download_%s.log", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	multiWrite := io.MultiWriter(os.Stdout, file)
	logger := log.New(multiWrite, "", log.Ldate|log.Ltime)

	return &CrawlerLogger{
		file:       file,
		logger:     logger,
		multiWrite: multiWrite,
	}, nil
}

// NewConsoleLogger logs to w only, without timestamps.
func NewConsoleLogger(w io.Writer) *CrawlerLogger {
	return &CrawlerLogger{
		logger:     log.New(w, "", 0),
		multiWrite: w,
	}
}

func (cl *CrawlerLogger) LogInfo(format string, v ...interface{}) {
	cl.log("INFO", format, v...)
}

func (cl *CrawlerLogger) LogWarning(format string, v ...interface{}) {
	cl.mu.Lock()
	cl.warnings++
	cl.mu.Unlock()
	cl.log("WARNING", format, v...)
}

func (cl *CrawlerLogger) LogError(format string, v ...interface{}) {
	cl.mu.Lock()
	cl.errors++
	cl.mu.Unlock()
	cl.log("ERROR", format, v...)
}

func (cl *CrawlerLogger) LogDebug(format string, v ...interface{}) {
	cl.log("DEBUG", format, v...)
}

// LogEvent logs under a custom tag such as FETCHING or SAVED.
func (cl *CrawlerLogger) LogEvent(tag string, format string, v ...interface{}) {
	cl.log(strings.ToUpper(tag), format, v...)
}

// Println writes an untagged line, used for banners and menus.
func (cl *CrawlerLogger) Println(v ...interface{}) {
	fmt.Fprintln(cl.multiWrite, v...)
}

// Counts reports how many warnings and errors have been logged.
func (cl *CrawlerLogger) Counts() (warnings, errors int) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.warnings, cl.errors
}

func (cl *CrawlerLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	cl.logger.Printf("[%s] %s", level, message)
}

// Close is a no-op for console loggers.
func (cl *CrawlerLogger) Close() error {
	if cl.file == nil {
		return nil
	}
	return cl.file.Close()
}
