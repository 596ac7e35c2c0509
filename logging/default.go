package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
)

// DefaultLogger writes Debug and Info to stdout and everything from Warn up
// to stderr. On a terminal, Warn is yellow, Error red and Fatal bold red.
type DefaultLogger struct {
	stdoutLogger *log.Logger
	stderrLogger *log.Logger
	level        Level
	fields       Fields
	useColors    bool
	exit         func(code int)
}

// NewDefaultLogger creates a new default logger, colored when stdout is a terminal
func NewDefaultLogger() *DefaultLogger {
	logger := NewWriterLogger(os.Stdout, os.Stderr)
	logger.useColors = isTerminal(os.Stdout)
	return logger
}

// NewWriterLogger creates an uncolored logger writing to the given writers
func NewWriterLogger(stdout, stderr io.Writer) *DefaultLogger {
	return &DefaultLogger{
		stdoutLogger: log.New(stdout, "", log.LstdFlags),
		stderrLogger: log.New(stderr, "", log.LstdFlags),
		level:        InfoLevel,
		fields:       make(Fields),
		useColors:    false,
		exit:         os.Exit,
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// levelColors holds the ANSI prefix for levels that are colored on a TTY
var levelColors = map[Level]string{
	WarnLevel:  ColorYellow,
	ErrorLevel: ColorRed,
	FatalLevel: ColorBold + ColorRed,
}

// line renders "[LEVEL] msg: err k=v ..." with keys in sorted order.
func (d *DefaultLogger) line(level Level, err error, msg string, fields []Fields) string {
	merged := make(Fields, len(d.fields))
	maps.Copy(merged, d.fields)
	for _, f := range fields {
		maps.Copy(merged, f)
	}

	color, colored := levelColors[level]
	colored = colored && d.useColors

	var b strings.Builder
	if colored {
		b.WriteString(color)
	}
	b.WriteString("[" + level.String() + "] " + msg)
	if err != nil {
		b.WriteString(": " + err.Error())
	}
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&b, " %s=%v", k, merged[k])
	}
	if colored {
		b.WriteString(ColorReset)
	}

	return b.String()
}

func (d *DefaultLogger) emit(level Level, err error, msg string, fields []Fields) {
	if level < d.level {
		return
	}

	out := d.stdoutLogger
	if level >= WarnLevel {
		out = d.stderrLogger
	}
	out.Println(d.line(level, err, msg, fields))

	if level == FatalLevel {
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.emit(DebugLevel, nil, msg, fields) }
func (d *DefaultLogger) Info(msg string, fields ...Fields)  { d.emit(InfoLevel, nil, msg, fields) }
func (d *DefaultLogger) Warn(msg string, fields ...Fields)  { d.emit(WarnLevel, nil, msg, fields) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.emit(ErrorLevel, err, msg, fields)
}

// Fatal logs to stderr and then exits with status 1
func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.emit(FatalLevel, err, msg, fields)
}

// WithFields returns a child logger sharing d's outputs and level. The
// parent's fields are not modified.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := *d
	child.fields = make(Fields, len(d.fields)+len(fields))
	maps.Copy(child.fields, d.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything. Library components use it until a caller
// injects a real logger.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
