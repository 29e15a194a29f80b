// Package logging provides the process-wide debug sink used across the
// download core. It mirrors the single append-only, timestamped log file
// pattern this codebase's lineage uses for best-effort diagnostics.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	debugFile *os.File
	debugOnce sync.Once
	mu        sync.Mutex
)

// Debug appends a timestamped line to fdm-debug.log in the working
// directory. It never returns an error: logging is a side channel and
// must not affect caller control flow.
func Debug(format string, args ...any) {
	debugOnce.Do(func() {
		debugFile, _ = os.OpenFile("fdm-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	})
	if debugFile == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(debugFile, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
	_ = debugFile.Sync()
}

// Field renders a key=value pair for structured-ish debug lines, e.g.
// logging.Debug("history hook panicked %s: %v", logging.Field("id", id), err)
func Field(key string, value any) string {
	return fmt.Sprintf("%s=%v", key, value)
}
