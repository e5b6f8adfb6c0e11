package message

import "github.com/apex/log"

// Logger is the logging interface used throughout this module. It is
// compatible with github.com/apex/log's Logger, so callers can pass
// log.Log (or any apex/log derivative) directly.
type Logger interface {
	Debug(msg string)
	Debugf(format string, v ...interface{})
	Info(msg string)
	Infof(format string, v ...interface{})
	Warn(msg string)
	Warnf(format string, v ...interface{})
	Error(msg string)
	Errorf(format string, v ...interface{})
}

// defaultLogger adapts apex/log's package-level logger to Logger.
type defaultLogger struct{}

// DefaultLogger is used wherever a component is not given an explicit Logger.
var DefaultLogger Logger = &defaultLogger{}

func (defaultLogger) Debug(msg string)                       { log.Debug(msg) }
func (defaultLogger) Debugf(format string, v ...interface{}) { log.Debugf(format, v...) }
func (defaultLogger) Info(msg string)                        { log.Info(msg) }
func (defaultLogger) Infof(format string, v ...interface{})  { log.Infof(format, v...) }
func (defaultLogger) Warn(msg string)                        { log.Warn(msg) }
func (defaultLogger) Warnf(format string, v ...interface{})  { log.Warnf(format, v...) }
func (defaultLogger) Error(msg string)                       { log.Error(msg) }
func (defaultLogger) Errorf(format string, v ...interface{}) { log.Errorf(format, v...) }

var _ Logger = (*defaultLogger)(nil)
