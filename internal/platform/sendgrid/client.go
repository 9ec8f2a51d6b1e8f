// Package sendgrid sends transactional mail through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/envutil"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/httpx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

const (
	defaultBaseURL = "https://api.sendgrid.com"
	mailSendPath   = "/v3/mail/send"
)

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:           envutil.String("SENDGRID_API_KEY", "", nil),
		BaseURL:          envutil.String("SENDGRID_BASE_URL", defaultBaseURL, nil),
		DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", "", nil),
		DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", "SkilledUp", nil),
		Timeout:          envutil.Duration("SENDGRID_TIMEOUT", 30*time.Second),
		MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 3),
	}
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
	From       EmailAddress
	To         []EmailAddress
	Subject    string
	Text       string
	HTML       string
	Categories []string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

type client struct {
	api  *httpx.JSONClient
	from EmailAddress
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, errors.New("sendgrid: logger required")
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("sendgrid: missing SENDGRID_API_KEY")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	api := httpx.NewJSONClient(log, "sendgrid", base, cfg.Timeout, cfg.MaxRetries)
	api.Header = http.Header{"Authorization": []string{"Bearer " + key}}
	return &client{
		api:  api,
		from: EmailAddress{Email: strings.TrimSpace(cfg.DefaultFromEmail), Name: strings.TrimSpace(cfg.DefaultFromName)},
	}, nil
}

// mailSend is the v3 /mail/send body with a single personalization.
type mailSend struct {
	Personalizations []struct {
		To []EmailAddress `json:"to"`
	} `json:"personalizations"`
	From       EmailAddress  `json:"from"`
	Subject    string        `json:"subject"`
	Content    []mailContent `json:"content"`
	Categories []string      `json:"categories,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// build fills the sender from config when the request has none and checks
// what SendGrid would otherwise reject with a 400.
func (c *client) build(req SendEmailRequest) (mailSend, error) {
	var body mailSend
	from := req.From
	if strings.TrimSpace(from.Email) == "" {
		from = c.from
	}
	from.Email = strings.TrimSpace(from.Email)
	switch {
	case from.Email == "":
		return body, errors.New("sendgrid: From.Email required (or set SENDGRID_FROM_EMAIL)")
	case len(req.To) == 0:
		return body, errors.New("sendgrid: To required")
	case strings.TrimSpace(req.Subject) == "":
		return body, errors.New("sendgrid: Subject required")
	}
	for _, part := range []mailContent{{"text/plain", req.Text}, {"text/html", req.HTML}} {
		if v := strings.TrimSpace(part.Value); v != "" {
			body.Content = append(body.Content, mailContent{Type: part.Type, Value: v})
		}
	}
	if len(body.Content) == 0 {
		return body, errors.New("sendgrid: Text or HTML content required")
	}
	body.Personalizations = make([]struct {
		To []EmailAddress `json:"to"`
	}, 1)
	body.Personalizations[0].To = req.To
	body.From = from
	body.Subject = strings.TrimSpace(req.Subject)
	body.Categories = req.Categories
	return body, nil
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	body, err := c.build(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.api.Exchange(ctx, http.MethodPost, mailSendPath, body, nil)
	if err != nil {
		return nil, asHTTPError(err)
	}
	return &SendEmailResult{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}, nil
}

type errorItem struct {
	Message string `json:"message"`
	Field   any    `json:"field,omitempty"`
}

// HTTPError is a non-2xx answer from SendGrid with its error list decoded.
type HTTPError struct {
	StatusCode int
	Body       string
	Errors     []errorItem
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "sendgrid: <nil error>"
	}
	if len(e.Errors) > 0 && strings.TrimSpace(e.Errors[0].Message) != "" {
		return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Errors[0].Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 1024 {
		msg = msg[:1024] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// asHTTPError replaces a rejected request's StatusError with an HTTPError.
// Transport failures and exhausted retries keep their ErrUpstreamUnavailable
// wrapping.
func asHTTPError(err error) error {
	var se *httpx.StatusError
	if errors.Is(err, httpx.ErrUpstreamUnavailable) || !errors.As(err, &se) {
		return err
	}
	he := &HTTPError{StatusCode: se.StatusCode, Body: se.Body}
	var decoded struct {
		Errors []errorItem `json:"errors"`
	}
	if json.Unmarshal([]byte(se.Body), &decoded) == nil {
		he.Errors = decoded.Errors
	}
	return he
}
