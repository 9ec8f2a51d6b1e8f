package notification

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/httpx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/sendgrid"
)

// Sender delivers a plain-text email. Implementations retry transient
// failures themselves; callers treat any error as a failed delivery.
type Sender interface {
	SendEmail(ctx context.Context, recipient, subject, body string) error
}

const (
	ProviderHTTP     = "http"
	ProviderSendGrid = "sendgrid"
	ProviderLog      = "log"
)

type Config struct {
	Provider   string
	ServiceURL string
	Timeout    time.Duration
	MaxRetries int
	SendGrid   sendgrid.Config
}

func New(log *logger.Logger, cfg Config) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderHTTP:
		if strings.TrimSpace(cfg.ServiceURL) == "" {
			return nil, fmt.Errorf("missing NOTIFICATION_SERVICE_URL")
		}
		return NewHTTPSender(log, cfg.ServiceURL, cfg.Timeout, cfg.MaxRetries), nil
	case ProviderSendGrid:
		sg, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			return nil, err
		}
		return NewSendGridSender(sg), nil
	case ProviderLog:
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown NOTIFICATION_PROVIDER %q", cfg.Provider)
	}
}

type emailRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type httpSender struct {
	client *httpx.JSONClient
}

// NewHTTPSender posts to the notification service's send endpoint.
func NewHTTPSender(log *logger.Logger, baseURL string, timeout time.Duration, maxRetries int) Sender {
	return &httpSender{client: httpx.NewJSONClient(log, "notification-service", baseURL, timeout, maxRetries)}
}

func (s *httpSender) SendEmail(ctx context.Context, recipient, subject, body string) error {
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("recipient required")
	}
	return s.client.Do(ctx, http.MethodPost, "/api/notifications/send", emailRequest{
		Recipient: strings.TrimSpace(recipient),
		Subject:   subject,
		Body:      body,
	}, nil)
}

type sendGridSender struct {
	sg sendgrid.Client
}

func NewSendGridSender(sg sendgrid.Client) Sender {
	return &sendGridSender{sg: sg}
}

func (s *sendGridSender) SendEmail(ctx context.Context, recipient, subject, body string) error {
	_, err := s.sg.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: strings.TrimSpace(recipient)}},
		Subject:    subject,
		Text:       body,
		Categories: []string{"task-engine"},
	})
	return err
}

type logSender struct {
	log *logger.Logger
}

// NewLogSender only logs; used in development and when no provider is set up.
func NewLogSender(log *logger.Logger) Sender {
	return &logSender{log: log.With("service", "LogNotificationSender")}
}

func (s *logSender) SendEmail(_ context.Context, recipient, subject, body string) error {
	s.log.Info("Email (not delivered)", "recipient", recipient, "subject", subject, "body_len", len(body))
	return nil
}
