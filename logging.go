package gts

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/kataras/golog"
)

const NEWLINE = "\n"

var Log = newLogger()

type ScanFormatter struct{}

// The name of the formatter.
func (s *ScanFormatter) String() string {
	return "ScanFormatter"
}

// Set any options and return a clone,
// generic. See `Logger.SetFormat`.
func (s *ScanFormatter) Options(_ ...interface{}) golog.Formatter {
	// no custom options currently
	return s
}

// Writes the "log" to "dest" logger.
func (s *ScanFormatter) Format(dest io.Writer, log *golog.Log) bool {
	timestamp := time.Now().Format(time.RFC1123)
	line := fmt.Sprintf("%s %s %s: %s%s", timestamp, golog.Levels[log.Level].Text(true), getCallingFunction(), log.Message, NEWLINE)
	if _, err := dest.Write([]byte(line)); err != nil {
		fmt.Printf("[FATAL] error in logger: %+v\n", err)
		return false
	}
	return true
}

// configure logging here
func newLogger() *golog.Logger {
	logger := golog.New()
	logger.RegisterFormatter(&ScanFormatter{})
	logger.SetLevel("info")
	logger.SetFormat("ScanFormatter")
	return logger
}

// returns the first frame outside of the logging packages,
// skipping runtime.Callers and this function itself
func callerFrame(skipFnNames []string) runtime.Frame {
	programCounters := make([]uintptr, 32)
	n := runtime.Callers(2, programCounters)
	if n == 0 {
		return runtime.Frame{Function: "unknown"}
	}

	frames := runtime.CallersFrames(programCounters[:n])
	for {
		frame, more := frames.Next()

		skip := strings.HasSuffix(frame.Function, "gts.getCallingFunction") || strings.HasSuffix(frame.Function, "gts.(*ScanFormatter).Format")
		for _, skipFnName := range skipFnNames {
			if strings.Contains(frame.Function, skipFnName) {
				skip = true
				break
			}
		}

		if !skip {
			return frame
		}

		if !more {
			break
		}
	}

	return runtime.Frame{Function: "unknown"}
}

// returns the name of the function that called the logger
func getCallingFunction() string {
	parts := strings.Split(callerFrame([]string{"kataras", "runtime."}).Function, "/")
	return parts[len(parts)-1]
}

// SetDebug switches the package logger between debug and info level
func SetDebug(debug bool) {
	if debug {
		Log.SetLevel("debug")
	} else {
		Log.SetLevel("info")
	}
}
