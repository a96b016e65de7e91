// Package notify reports progress of lifecycle operations to the user.
package notify

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Type classifies a notification.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Update replaces the message and type of an emitted notification.
type Update struct {
	ID        string
	Message   string
	Type      Type
	AutoClose bool
}

// Notifier shows transient progress messages.
type Notifier interface {
	// Emit shows message and returns an id for later updates.
	Emit(message string) string
	Update(u Update)
}

// NewID returns a fresh notification id.
func NewID() string {
	return "notification-" + uuid.NewString()
}

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger discards everything.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Emit(message string) string {
	id := NewID()
	n.logger.Info(message, zap.String("id", id), zap.String("type", string(TypeInfo)))
	return id
}

func (n *LogNotifier) Update(u Update) {
	fields := []zap.Field{zap.String("id", u.ID), zap.String("type", string(u.Type))}
	switch u.Type {
	case TypeError:
		n.logger.Error(u.Message, fields...)
	case TypeWarning:
		n.logger.Warn(u.Message, fields...)
	default:
		n.logger.Info(u.Message, fields...)
	}
}

// Tee forwards every notification to several notifiers under one id.
type Tee struct {
	notifiers []Notifier
}

func NewTee(notifiers ...Notifier) *Tee {
	return &Tee{notifiers: notifiers}
}

func (t *Tee) Emit(message string) string {
	id := NewID()
	t.Update(Update{ID: id, Message: message, Type: TypeInfo})
	return id
}

func (t *Tee) Update(u Update) {
	for _, n := range t.notifiers {
		n.Update(u)
	}
}

// Outcome picks the final update for an operation that reported ok.
func Outcome(id string, ok bool, success, failure string) Update {
	if ok {
		return Update{ID: id, Message: success, Type: TypeSuccess, AutoClose: true}
	}
	return Update{ID: id, Message: failure, Type: TypeError, AutoClose: true}
}

// Failure builds the update shown when an operation returned a Go error.
func Failure(id, action string, err error) Update {
	return Update{ID: id, Message: "Error " + action + ": " + err.Error(), Type: TypeError, AutoClose: true}
}
