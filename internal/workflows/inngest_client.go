package workflows

import (
	"context"
	"fmt"

	"github.com/hypernova-labs/invoice-designer/internal/config"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"
)

// Prefijo de los eventos publicados por el diseñador
const eventPrefix = "designer/"

// EventSender es la parte del cliente de Inngest que usa el notificador
type EventSender interface {
	Send(ctx context.Context, evt any) (string, error)
}

// InngestClient publica las notificaciones del diseñador como eventos de Inngest
type InngestClient struct {
	client EventSender
	logger *logrus.Logger
}

// NewInngestClient crea una nueva instancia del cliente
func NewInngestClient(cfg *config.Config, logger *logrus.Logger) (*InngestClient, error) {
	// Verificar que las credenciales estén configuradas
	if cfg.Inngest.EventKey == "" {
		return nil, fmt.Errorf("INNGEST_EVENT_KEY not configured")
	}

	opts := inngestgo.ClientOpts{
		AppID:    cfg.Inngest.AppID,
		EventKey: &cfg.Inngest.EventKey,
		Dev:      &cfg.Inngest.Dev,
	}
	if cfg.Inngest.SigningKey != "" {
		opts.SigningKey = &cfg.Inngest.SigningKey
	}

	client, err := inngestgo.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("error creating Inngest client: %w", err)
	}

	return NewInngestNotifier(client, logger), nil
}

// NewInngestNotifier crea el notificador sobre un cliente existente
func NewInngestNotifier(client EventSender, logger *logrus.Logger) *InngestClient {
	return &InngestClient{
		client: client,
		logger: logger,
	}
}

// Notify publica la notificación como evento "designer/<acción>".
// Un fallo al publicar solo se registra en el log.
func (c *InngestClient) Notify(ctx context.Context, n models.Notification) {
	data := map[string]any{
		"level":   string(n.Level),
		"message": n.Message,
	}
	for k, v := range n.Fields {
		data[k] = v
	}

	id, err := c.client.Send(ctx, inngestgo.Event{
		Name: eventPrefix + n.Action,
		Data: data,
	})
	if err != nil {
		c.logger.WithError(err).WithField("action", n.Action).Warn("Error publishing designer event to Inngest")
		return
	}

	c.logger.WithFields(logrus.Fields{
		"event_id": id,
		"action":   n.Action,
	}).Debug("Designer event published to Inngest")
}
