package contracts

import (
	"fmt"
	"strings"
	"time"
)

// LogLevel is the minimum severity a Logger emits.
type LogLevel int

// The zero value is InfoLevel so option structs that leave the level unset
// still log loads, unloads and packages.
const (
	// InfoLevel reports normal progress such as a plugin being loaded or a package being written.
	InfoLevel LogLevel = iota
	// DebugLevel reports per-note and per-file detail useful while developing a plugin.
	DebugLevel
	// ErrorLevel reports failed requests, invalid manifests and device errors.
	ErrorLevel
	// WarnLevel reports recoverable problems such as dropped MIDI events.
	WarnLevel
	// FatalLevel reports errors after which the process exits.
	FatalLevel
)

var levelNames = map[LogLevel]string{
	InfoLevel:  "info",
	DebugLevel: "debug",
	ErrorLevel: "error",
	WarnLevel:  "warn",
	FatalLevel: "fatal",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLogLevel reads a level name as written on a command line
// ("debug", "INFO", "warning").
func ParseLogLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		return WarnLevel, nil
	}
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// LogDestination is where a Logger writes.
type LogDestination string

const (
	// ConsoleLog writes to stderr. Plugin binaries keep stdout for the host protocol.
	ConsoleLog LogDestination = "console"
	// FileLog appends to a file.
	FileLog LogDestination = "file"
)

// Field is a typed key/value attached to a log entry. Implementations return
// a new Field from every builder method.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Int64(key string, val int64) Field
	Uint8(key string, val uint8) Field
	Uint64(key string, val uint64) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Strings(key string, val []string) Field
	Time(key string, val time.Time) Field
	Duration(key string, val time.Duration) Field
	Error(key string, val error) Field
}

// Logger is the logging surface plugins, packagers and capture clients share.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// Field returns a builder for typed fields.
	Field() Field
	// With returns a child that adds fields to every entry. The child shares
	// the parent's level.
	With(fields ...Field) Logger

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string)
}
