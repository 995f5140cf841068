// Package logging provides Adaptrix's leveled logger, backed by
// charmbracelet/log instead of the standard library logger.
package logging

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type charmLogger struct {
	mu    sync.Mutex
	debug bool
	l     *log.Logger
}

// New returns a Logger prefixed with component, writing to stderr.
func New(component string) Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	})
	l.SetLevel(log.InfoLevel)
	return &charmLogger{l: l}
}

func (c *charmLogger) DebugEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debug
}

func (c *charmLogger) SetDebug(enabled bool) {
	c.mu.Lock()
	c.debug = enabled
	c.mu.Unlock()
	if enabled {
		c.l.SetLevel(log.DebugLevel)
	} else {
		c.l.SetLevel(log.InfoLevel)
	}
}

func (c *charmLogger) Debugf(format string, args ...any) { c.l.Debugf(format, args...) }
func (c *charmLogger) Infof(format string, args ...any)  { c.l.Infof(format, args...) }
func (c *charmLogger) Warnf(format string, args ...any)  { c.l.Warnf(format, args...) }
func (c *charmLogger) Errorf(format string, args ...any) { c.l.Errorf(format, args...) }

type nopLogger struct{}

// NewNop returns a Logger that discards everything. The package has no
// default logger; callers construct one with New or NewNop.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool                { return false }
func (nopLogger) SetDebug(enabled bool)             {}
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}
