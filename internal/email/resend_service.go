package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

var exportEmailTemplate = template.Must(template.New("export-email").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: {{.Primary}}; color: #fff; padding: 20px; text-align: center; border-radius: 8px; }
        .content { padding: 20px; }
        .footer { margin-top: 30px; padding: 20px; background-color: #f8f9fa; border-radius: 8px; font-size: 14px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <p>Template: {{.TemplateName}}</p>
        </div>
        <div class="content">
            <p>The invoice rendered with the <strong>{{.TemplateName}}</strong> template is attached as a PDF.</p>
            <p>Page: {{.Format}} ({{.Orientation}})</p>
        </div>
        <div class="footer">
            <p>This is an automated email from the invoice designer.</p>
            <p>Document fingerprint: {{.Fingerprint}}</p>
        </div>
    </div>
</body>
</html>`))

// ResendService maneja el envío de correos electrónicos usando Resend API
type ResendService struct {
	client    *resend.Client
	fromEmail string
	logger    *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(apiKey string, fromEmail string, logger *logrus.Logger) *ResendService {
	if fromEmail == "" {
		fromEmail = "onboarding@resend.dev" // Dominio verificado de Resend
	}
	return &ResendService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		logger:    logger,
	}
}

// SendInvoiceExport envía el PDF exportado como adjunto y retorna el ID del email
func (s *ResendService) SendInvoiceExport(ctx context.Context, to, subject string, doc models.Document, pdf []byte) (string, error) {
	if strings.TrimSpace(subject) == "" {
		subject = fmt.Sprintf("%s - %s", doc.Title, doc.TemplateName)
	}

	var body bytes.Buffer
	err := exportEmailTemplate.Execute(&body, map[string]string{
		"Title":        doc.Title,
		"TemplateName": doc.TemplateName,
		"Primary":      doc.Theme.Colors.Primary,
		"Format":       strings.ToUpper(string(doc.Page.Format)),
		"Orientation":  string(doc.Page.Orientation),
		"Fingerprint":  doc.Fingerprint,
	})
	if err != nil {
		return "", fmt.Errorf("error rendering email body: %w", err)
	}

	request := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body.String(),
		Attachments: []*resend.Attachment{
			{
				Content:  pdf,
				Filename: attachmentName(doc),
			},
		},
	}

	result, err := s.client.Emails.SendWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id":    result.Id,
		"to":          to,
		"subject":     subject,
		"fingerprint": doc.Fingerprint,
	}).Info("Invoice export sent successfully via Resend")

	return result.Id, nil
}

func attachmentName(doc models.Document) string {
	name := strings.ToLower(strings.ReplaceAll(doc.Title, " ", "-"))
	if len(doc.Fingerprint) >= 12 {
		name += "-" + doc.Fingerprint[:12]
	}
	return name + ".pdf"
}
