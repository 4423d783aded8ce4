// Package lognotify displays sunset notifications by writing them to the log.
// It is used when no chat transport is configured.
package lognotify

import (
	"context"

	"extension_sunset/internal/domain/sunset"

	"github.com/sirupsen/logrus"
)

type Notifier struct {
	logger *logrus.Entry
}

var _ sunset.Notifier = (*Notifier)(nil)

func New(logger *logrus.Entry) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, note sunset.Notification) error {
	n.logger.WithFields(logrus.Fields{
		"notification_id": note.ID,
		"type":            note.Type,
		"icon":            note.IconURL,
		"title":           note.Title,
	}).Warn(note.Message)
	return nil
}
