package observe

import (
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"time"
)

// LogLevel orders log severities from debug up to error.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// ParseLogLevel parses a string log level. Unknown names fall back to
// info.
func ParseLogLevel(s string) LogLevel {
	if i := slices.Index(levelNames[:], s); i >= 0 {
		return LogLevel(i)
	}
	return LevelInfo
}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "info"
	}
	return levelNames[l]
}

// structuredLogger writes one JSON object per line. The mutex guards
// only the writer; entries are assembled and marshalled outside it.
type structuredLogger struct {
	level     LogLevel
	writer    io.Writer
	mu        sync.Mutex
	opMeta    *OpMeta
	baseAttrs map[string]any
}

// NewLogger creates a structured logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a structured logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &structuredLogger{
		level:     ParseLogLevel(level),
		writer:    w,
		baseAttrs: make(map[string]any),
	}
}

// WithOp returns a logger that stamps every entry with the operation's
// identity.
func (l *structuredLogger) WithOp(meta OpMeta) Logger {
	attrs := maps.Clone(l.baseAttrs)
	attrs["op.id"] = meta.OpID()
	attrs["op.component"] = meta.Component
	if meta.Target != "" {
		attrs["op.target"] = meta.Target
	}

	return &structuredLogger{
		level:     l.level,
		writer:    l.writer,
		opMeta:    &meta,
		baseAttrs: attrs,
	}
}

func (l *structuredLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields)
}

func (l *structuredLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields)
}

func (l *structuredLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields)
}

func (l *structuredLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields)
}

func (l *structuredLogger) log(level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(l.baseAttrs)+len(fields)+3)
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg
	maps.Copy(entry, l.baseAttrs)

	for _, f := range fields {
		value := f.Value
		if isRedactedField(f.Key) {
			value = "[REDACTED]"
		}
		entry[f.Key] = value
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return // drop entries that cannot be serialized
	}
	line = append(line, '\n')

	l.mu.Lock()
	l.writer.Write(line)
	l.mu.Unlock()
}

// isRedactedField reports whether a field's value must be masked.
func isRedactedField(key string) bool {
	return slices.Contains(RedactedFields, key)
}
