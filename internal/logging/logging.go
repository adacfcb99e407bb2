// Package logging builds the component loggers used across the service.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Flags are the log flags every component logger uses.
const Flags = log.LstdFlags | log.Lshortfile

// Output is the shared destination of all component loggers.
type Output struct {
	w    io.Writer
	file *lumberjack.Logger
}

// NewOutput writes to stdout and, when file is set, to a rotated log file.
func NewOutput(file string) *Output {
	if file == "" {
		return &Output{w: os.Stdout}
	}

	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return &Output{w: io.MultiWriter(os.Stdout, rotated), file: rotated}
}

// Writer returns the underlying writer.
func (o *Output) Writer() io.Writer {
	return o.w
}

// Logger returns a logger prefixed with "[component] ".
func (o *Output) Logger(component string) *log.Logger {
	return log.New(o.w, "["+component+"] ", Flags)
}

// Close flushes and closes the rotated file, if any.
func (o *Output) Close() error {
	if o.file == nil {
		return nil
	}
	return o.file.Close()
}
