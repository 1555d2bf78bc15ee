package mail

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parish/internal/domain/service"

	"github.com/pkg/errors"
)

const mailgunDefaultBaseURL = "https://api.mailgun.net/v3"

// MailgunSender delivers mail through the Mailgun messages API.
type MailgunSender struct {
	domain  string
	apiKey  string
	sender  string
	baseURL string
	client  *http.Client
}

// NewMailgunSender builds a Mailgun transport from an integration config map.
// Recognized keys: domain, api_key, sender_email, base_url.
func NewMailgunSender(cfg map[string]any) (*MailgunSender, error) {
	domain := stringOpt(cfg, "domain")
	apiKey := stringOpt(cfg, "api_key")
	if domain == "" || apiKey == "" {
		return nil, errors.New("mailgun integration requires domain and api_key")
	}

	baseURL := stringOpt(cfg, "base_url")
	if baseURL == "" {
		baseURL = mailgunDefaultBaseURL
	}

	return &MailgunSender{
		domain:  domain,
		apiKey:  apiKey,
		sender:  stringOpt(cfg, "sender_email"),
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Name returns the transport identifier.
func (s *MailgunSender) Name() string {
	return "mailgun"
}

// Send delivers the message through Mailgun.
func (s *MailgunSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	sender := msg.Sender
	if sender == "" {
		sender = s.sender
	}
	if sender == "" {
		return errors.New("mailgun transport has no sender address")
	}

	form := url.Values{}
	form.Set("from", sender)
	for _, recipient := range msg.Recipients {
		form.Add("to", recipient)
	}
	form.Set("subject", msg.Subject)
	if msg.HTML {
		form.Set("html", msg.Body)
	} else {
		form.Set("text", msg.Body)
	}

	endpoint := s.baseURL + "/" + s.domain + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.WithStack(err)
	}
	req.SetBasicAuth("api", s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "mailgun send failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return errors.Errorf("mailgun returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
