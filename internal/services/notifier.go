package services

import (
	"context"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/sirupsen/logrus"
)

// Notifier recibe los resultados de guardar, descartar o fallar (toasts).
// No participa del renderizado.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// LogNotifier escribe las notificaciones en el logger
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier crea una nueva instancia del notificador
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify registra la notificación con su nivel
func (l *LogNotifier) Notify(ctx context.Context, n models.Notification) {
	fields := logrus.Fields{
		"action":   n.Action,
		"severity": n.Level,
	}
	for k, v := range n.Fields {
		fields[k] = v
	}

	entry := l.logger.WithFields(fields)
	if n.Level == models.NotificationError {
		entry.Warn(n.Message)
		return
	}
	entry.Info(n.Message)
}

// MultiNotifier reenvía cada notificación a todos los destinos en orden
type MultiNotifier []Notifier

// Notify implementa Notifier
func (m MultiNotifier) Notify(ctx context.Context, n models.Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, models.Notification) {}
