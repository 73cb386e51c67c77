// Package notification delivers alerts over webhook, Slack and mail channels.
//
//	type LowStockNotification struct{ ... }
//	func (n LowStockNotification) Via() []string { return []string{"webhook", "slack"} }
//	func (n LowStockNotification) ToWebhook() notification.WebhookData { ... }
//	func (n LowStockNotification) ToSlack() notification.SlackData { ... }
//	func (n LowStockNotification) ToMail() notification.MailData { ... }
//
//	err := notifier.Send(ctx, LowStockNotification{...})
//
// A channel whose URL is not configured is skipped, so an unconfigured
// deployment sends nothing and reports no error.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/http"
	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/mail"
)

const (
	ChannelWebhook = "webhook"
	ChannelSlack   = "slack"
	ChannelMail    = "mail"
)

// SlackData is an incoming-webhook message.
type SlackData struct {
	WebhookURL  string
	Text        string
	Attachments []SlackAttachment
}

type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // good | warning | danger
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// WebhookData is a JSON payload POSTed to URL.
type WebhookData struct {
	URL     string
	Payload any
	Headers map[string]string
}

// MailData is a plain-text email. An empty To falls back to the
// notifier's default recipients.
type MailData struct {
	To      []string
	Subject string
	Text    string
}

// Notification names the channels it goes out on.
type Notification interface {
	Via() []string
}

type Slackable interface {
	ToSlack() SlackData
}

type Webhookable interface {
	ToWebhook() WebhookData
}

type Mailable interface {
	ToMail() MailData
}

// Notifier holds the default channel URLs and the retry policy.
type Notifier struct {
	WebhookURL string
	SlackURL   string
	Attempts   int
	Backoff    time.Duration

	mailer *mail.Mailer
	mailTo []string
}

// New returns a Notifier that tries each delivery three times.
func New(webhookURL, slackURL string) *Notifier {
	return &Notifier{WebhookURL: webhookURL, SlackURL: slackURL, Attempts: 3, Backoff: 500 * time.Millisecond}
}

// WithMail enables the mail channel with default recipients.
func (n *Notifier) WithMail(m *mail.Mailer, to ...string) *Notifier {
	n.mailer = m
	n.mailTo = to
	return n
}

// Enabled reports whether any channel is configured.
func (n *Notifier) Enabled() bool {
	return n.WebhookURL != "" || n.SlackURL != "" || (n.mailer.Enabled() && len(n.mailTo) > 0)
}

// Send delivers n on every channel it names and joins the failures.
func (nt *Notifier) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		if err := nt.dispatch(ctx, channel, n); err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", channel, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", channel, err))
		}
	}
	return errors.Join(errs...)
}

func (nt *Notifier) dispatch(ctx context.Context, channel string, n Notification) error {
	switch channel {
	case ChannelSlack:
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		return nt.sendSlack(ctx, s.ToSlack())
	case ChannelWebhook:
		wh, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return nt.sendWebhook(ctx, wh.ToWebhook())
	case ChannelMail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return nt.sendMail(ctx, m.ToMail())
	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

type slackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func (nt *Notifier) sendSlack(ctx context.Context, d SlackData) error {
	url := d.WebhookURL
	if url == "" {
		url = nt.SlackURL
	}
	if url == "" {
		return nil
	}
	return nt.post(ctx, url, slackPayload{Text: d.Text, Attachments: d.Attachments}, nil)
}

func (nt *Notifier) sendWebhook(ctx context.Context, d WebhookData) error {
	url := d.URL
	if url == "" {
		url = nt.WebhookURL
	}
	if url == "" {
		return nil
	}
	return nt.post(ctx, url, d.Payload, d.Headers)
}

func (nt *Notifier) sendMail(ctx context.Context, d MailData) error {
	to := d.To
	if len(to) == 0 {
		to = nt.mailTo
	}
	if !nt.mailer.Enabled() || len(to) == 0 {
		return nil
	}
	return nt.mailer.Send(ctx, mail.Message{To: to, Subject: d.Subject, Text: d.Text})
}

func (nt *Notifier) post(ctx context.Context, url string, body any, headers map[string]string) error {
	client := *http.Default
	client.Attempts = nt.Attempts
	client.Backoff = nt.Backoff
	resp, err := client.PostJSON(ctx, url, body, headers)
	if err != nil {
		return err
	}
	return resp.Err()
}
