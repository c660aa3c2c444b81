package notifications

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const (
	brevoURL         = "https://api.brevo.com"
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

var ErrInvalidRecipient = errors.New("invalid recipient email")

type Recipient struct {
	Name  string
	Email string
}

// Mailer delivers one rendered e-mail.
type Mailer interface {
	Send(ctx context.Context, to Recipient, subject, htmlContent string) error
}

// NewMailer picks the e-mail backend by provider name. An unconfigured provider yields nil,
// which the Notifier treats as "no e-mail".
func NewMailer(provider, brevoKey, sendgridKey, senderEmail, senderName string, log *zap.Logger) Mailer {
	switch provider {
	case "brevo":
		if brevoKey == "" || senderEmail == "" {
			log.Warn("⚠️ Email service not configured. Missing Brevo API key or sender.")
			return nil
		}
		log.Info("✅ Email service initialized", zap.String("provider", provider))
		return NewBrevoMailer(brevoURL, brevoKey, senderEmail, senderName)
	case "sendgrid":
		if sendgridKey == "" || senderEmail == "" {
			log.Warn("⚠️ Email service not configured. Missing SendGrid API key or sender.")
			return nil
		}
		log.Info("✅ Email service initialized", zap.String("provider", provider))
		return NewSendGridMailer(sendgridKey, senderEmail, senderName)
	default:
		log.Info("email delivery disabled", zap.String("provider", provider))
		return nil
	}
}

func (r Recipient) displayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Email[:strings.Index(r.Email, "@")]
}

func checkRecipient(to Recipient) error {
	if to.Email == "" || !strings.Contains(to.Email, "@") {
		return errors.Wrap(ErrInvalidRecipient, to.Email)
	}
	return nil
}

type BrevoMailer struct {
	client      *resty.Client
	senderEmail string
	senderName  string
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func NewBrevoMailer(baseURL, apiKey, senderEmail, senderName string) *BrevoMailer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("accept", "application/json").
		SetHeader("api-key", apiKey).
		SetTimeout(10 * time.Second)
	return &BrevoMailer{client: client, senderEmail: senderEmail, senderName: senderName}
}

func (m *BrevoMailer) Send(ctx context.Context, to Recipient, subject, htmlContent string) error {
	if err := checkRecipient(to); err != nil {
		return err
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(brevoPayload{
			Sender:      map[string]string{"name": m.senderName, "email": m.senderEmail},
			To:          []map[string]string{{"email": to.Email, "name": to.displayName()}},
			Subject:     subject,
			HTMLContent: htmlContent,
		}).
		Post("/v3/smtp/email")
	if err != nil {
		return errors.Wrap(err, "send request to brevo")
	}
	if resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("failed to send email via Brevo: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

type SendGridMailer struct {
	key  string
	from *sgmail.Email
}

func NewSendGridMailer(apiKey, senderEmail, senderName string) *SendGridMailer {
	return &SendGridMailer{key: apiKey, from: sgmail.NewEmail(senderName, senderEmail)}
}

func (m *SendGridMailer) Send(_ context.Context, to Recipient, subject, htmlContent string) error {
	if err := checkRecipient(to); err != nil {
		return err
	}

	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(to.displayName(), to.Email))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/html", htmlContent))

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "send request to sendgrid")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to send email via SendGrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
