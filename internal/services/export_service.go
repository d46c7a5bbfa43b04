package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrExportUnavailable se retorna cuando el destino de exportación no está configurado
var ErrExportUnavailable = errors.New("export destination not configured")

// ObjectUploader sube un archivo y retorna su URL
type ObjectUploader interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ExportMailer envía un PDF exportado por email y retorna el ID del mensaje
type ExportMailer interface {
	SendInvoiceExport(ctx context.Context, to, subject string, doc models.Document, pdf []byte) (string, error)
}

// ExportService archiva o envía el documento impreso (sin escala) del visor
type ExportService struct {
	viewport *PreviewViewport
	uploader ObjectUploader
	mailer   ExportMailer
	notifier Notifier
	logger   *logrus.Logger
}

// NewExportService crea una nueva instancia del servicio. uploader y mailer son opcionales.
func NewExportService(viewport *PreviewViewport, uploader ObjectUploader, mailer ExportMailer, notifier Notifier, logger *logrus.Logger) *ExportService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ExportService{
		viewport: viewport,
		uploader: uploader,
		mailer:   mailer,
		notifier: notifier,
		logger:   logger,
	}
}

// ExportKey retorna la clave del objeto archivado para un documento
func ExportKey(doc models.Document) string {
	return "exports/" + doc.Fingerprint + ".pdf"
}

// Archive sube el PDF al bucket de exportaciones. La clave depende solo del
// contenido, por lo que archivar dos veces el mismo documento es idempotente.
func (s *ExportService) Archive(ctx context.Context) (*models.ExportArchiveResponse, error) {
	if s.uploader == nil {
		return nil, ErrExportUnavailable
	}

	pdf, doc, err := s.viewport.ExportPDF()
	if err != nil {
		return nil, fmt.Errorf("error generating export: %w", err)
	}

	key := ExportKey(doc)
	url, err := s.uploader.UploadFile(ctx, key, pdf, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("error archiving export: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"key":         key,
		"size":        len(pdf),
		"template_id": doc.TemplateID,
	}).Info("Invoice export archived")

	s.notifier.Notify(ctx, models.Notification{
		Level:   models.NotificationSuccess,
		Action:  models.ActionExportArchived,
		Message: "Invoice exported",
		Fields:  map[string]string{"key": key, "url": url},
	})

	return &models.ExportArchiveResponse{
		Key:         key,
		URL:         url,
		Size:        int64(len(pdf)),
		Fingerprint: doc.Fingerprint,
	}, nil
}

// Email envía el PDF exportado al destinatario indicado
func (s *ExportService) Email(ctx context.Context, req models.EmailExportRequest) (string, error) {
	if s.mailer == nil {
		return "", ErrExportUnavailable
	}
	to := strings.TrimSpace(req.To)
	if to == "" {
		return "", fmt.Errorf("recipient is required")
	}

	pdf, doc, err := s.viewport.ExportPDF()
	if err != nil {
		return "", fmt.Errorf("error generating export: %w", err)
	}

	id, err := s.mailer.SendInvoiceExport(ctx, to, req.Subject, doc, pdf)
	if err != nil {
		return "", fmt.Errorf("error emailing export: %w", err)
	}

	s.notifier.Notify(ctx, models.Notification{
		Level:   models.NotificationSuccess,
		Action:  models.ActionExportEmailed,
		Message: "Invoice sent to " + to,
		Fields:  map[string]string{"emailId": id},
	})

	return id, nil
}
