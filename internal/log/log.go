// Package log is the levelled console logger shared by md5sum and the trace server. Messages go
// to standard error so that digests written to standard output stay machine-readable.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var (
	mu       sync.Mutex
	out      io.Writer = os.Stderr
	verbose  bool
	disabled bool
	plain    bool
	prefixes = [...]string{
		levelDebug: "\033[37m[DBG]\033[0m",
		levelInfo:  "\033[36m[INF]\033[0m",
		levelWarn:  "\033[33m[WRN]\033[0m",
		levelError: "\033[31m[ERR]\033[0m",
	}
	plainPrefixes = [...]string{"[DBG]", "[INF]", "[WRN]", "[ERR]"}
)

// SetVerbose enables debug messages.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether debug messages are printed.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetPlain drops the ANSI colour codes from prefixes.
func SetPlain(p bool) {
	mu.Lock()
	plain = p
	mu.Unlock()
}

// DisableLogs silences every level, errors included.
func DisableLogs() {
	mu.Lock()
	disabled = true
	mu.Unlock()
}

// SetOutput redirects messages to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func Debugf(format string, args ...interface{}) { logf(levelDebug, format, args...) }

func Infof(format string, args ...interface{}) { logf(levelInfo, format, args...) }

func Warnf(format string, args ...interface{}) { logf(levelWarn, format, args...) }

func Errorf(format string, args ...interface{}) { logf(levelError, format, args...) }

// Fatalf logs an error and exits with status 1.
func Fatalf(format string, args ...interface{}) {
	logf(levelError, format, args...)
	os.Exit(1)
}

func logf(level int, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if disabled || (level == levelDebug && !verbose) {
		return
	}
	prefix := prefixes[level]
	if plain {
		prefix = plainPrefixes[level]
	}
	_, _ = io.WriteString(out, prefix+" "+fmt.Sprintf(format, args...)+"\n")
}
