package logger

import "github.com/sirupsen/logrus"

// NullLogger discards everything. Fatal does not exit.
type NullLogger struct{}

func NewNullLogger() Logger {
	return &NullLogger{}
}

func (n *NullLogger) WithFields(map[string]interface{}) Logger { return n }
func (n *NullLogger) WithField(string, interface{}) Logger     { return n }
func (n *NullLogger) WithError(error) Logger                   { return n }

func (n *NullLogger) Debug(...interface{})             {}
func (n *NullLogger) Info(...interface{})              {}
func (n *NullLogger) Warn(...interface{})              {}
func (n *NullLogger) Error(...interface{})             {}
func (n *NullLogger) Log(logrus.Level, ...interface{}) {}
func (n *NullLogger) Debugf(string, ...interface{})    {}
func (n *NullLogger) Infof(string, ...interface{})     {}
func (n *NullLogger) Warnf(string, ...interface{})     {}
func (n *NullLogger) Errorf(string, ...interface{})    {}
func (n *NullLogger) Fatal(...interface{})             {}
