// Package logging hands out leveled component loggers that share one level setting.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

var (
	mu      sync.Mutex
	level   = log.INFO
	loggers []*log.Logger
)

const header = `${time_rfc3339} ${level} [${prefix}]`

// New returns a logger tagged with the component name.
func New(component string) *log.Logger {
	l := log.New(component)
	l.SetOutput(os.Stdout)
	l.SetHeader(header)

	mu.Lock()
	defer mu.Unlock()
	l.SetLevel(level)
	loggers = append(loggers, l)
	return l
}

// ParseLevel maps a config string to a gommon level. Unknown names fall back to INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	}
	return log.INFO
}

// SetLevel changes the level of every logger handed out so far and of later ones.
func SetLevel(s string) log.Lvl {
	lvl := ParseLevel(s)
	mu.Lock()
	defer mu.Unlock()
	level = lvl
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
	return lvl
}
