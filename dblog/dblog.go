// Package dblog centralizes the logrus logger construction used by every
// component below it. Components take a *logrus.Logger constructor
// argument; a nil argument falls back to Default().
package dblog

import "github.com/sirupsen/logrus"

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Default returns the package-wide logger used when a caller does not
// supply its own.
func Default() *logrus.Logger {
	return base
}

// Or returns logger if non-nil, else Default(). Every constructor in this
// module that accepts an optional *logrus.Logger should route it through
// this helper exactly once.
func Or(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	return base
}
