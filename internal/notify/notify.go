// Package notify delivers mutation outcome notifications to operators:
// over NATS for external consumers, over the websocket hub for connected
// dashboards, and to the log as a fallback.
package notify

import (
	"time"

	"github.com/blockedby/recruiting-os/internal/logger"
)

// Notification levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Event is the notification envelope published to external consumers.
type Event struct {
	Level string    `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Notifier mirrors resource.Notifier; implementations in this package
// satisfy it.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// NewMulti combines notifiers, skipping nils.
func NewMulti(notifiers ...Notifier) Multi {
	var m Multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

// Success delivers a success notification to every notifier.
func (m Multi) Success(text string) {
	for _, n := range m {
		n.Success(text)
	}
}

// Error delivers an error notification to every notifier.
func (m Multi) Error(text string) {
	for _, n := range m {
		n.Error(text)
	}
}

// Log writes notifications to the structured log.
type Log struct {
	log *logger.Logger
}

// NewLog creates a log-backed notifier.
func NewLog(log *logger.Logger) *Log {
	if log == nil {
		log = logger.Get()
	}
	return &Log{log: log}
}

func (l *Log) Success(text string) {
	l.log.Info().Str("notify", LevelSuccess).Msg(text)
}

func (l *Log) Error(text string) {
	l.log.Warn().Str("notify", LevelError).Msg(text)
}
