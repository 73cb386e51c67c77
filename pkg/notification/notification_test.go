package notification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/mail"
	"github.com/shashiranjanraj/bodega/pkg/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alert struct{ sku string }

func (alert) Via() []string { return []string{notification.ChannelWebhook, notification.ChannelSlack} }

func (a alert) ToWebhook() notification.WebhookData {
	return notification.WebhookData{Payload: map[string]string{"sku": a.sku}, Headers: map[string]string{"X-Source": "bodega"}}
}

func (a alert) ToSlack() notification.SlackData {
	return notification.SlackData{Text: "low stock: " + a.sku}
}

type webhookOnly struct{}

func (webhookOnly) Via() []string { return []string{notification.ChannelSlack} }

type capture struct {
	body   map[string]any
	header http.Header
}

func server(t *testing.T, status int, got *capture) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendDeliversBothChannels(t *testing.T) {
	var hook, slack capture
	hookSrv := server(t, http.StatusNoContent, &hook)
	slackSrv := server(t, http.StatusOK, &slack)

	n := notification.New(hookSrv.URL, slackSrv.URL)
	require.NoError(t, n.Send(context.Background(), alert{sku: "TV-LG-001"}))

	assert.Equal(t, "TV-LG-001", hook.body["sku"])
	assert.Equal(t, "bodega", hook.header.Get("X-Source"))
	assert.Equal(t, "low stock: TV-LG-001", slack.body["text"])
}

func TestUnconfiguredChannelsAreSkipped(t *testing.T) {
	n := notification.New("", "")
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send(context.Background(), alert{sku: "x"}))
}

func TestFailedChannelIsReported(t *testing.T) {
	var hook capture
	hookSrv := server(t, http.StatusBadRequest, &hook)

	n := notification.New(hookSrv.URL, "")
	n.Backoff = time.Millisecond
	err := n.Send(context.Background(), alert{sku: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook")
}

func TestChannelNotImplemented(t *testing.T) {
	n := notification.New("", "http://127.0.0.1:1")
	assert.ErrorContains(t, n.Send(context.Background(), webhookOnly{}), "does not implement Slackable")
}

type mailed struct{ sku string }

func (mailed) Via() []string { return []string{notification.ChannelMail} }

func (m mailed) ToMail() notification.MailData {
	return notification.MailData{Subject: "low stock: " + m.sku, Text: "restock"}
}

func TestSendMailUsesDefaultRecipients(t *testing.T) {
	var to []string
	m := mail.New(mail.Config{Host: "smtp.test", Port: "25", From: "bodega@example.com"}).
		WithSendFunc(func(_ string, _ smtp.Auth, _ string, rcpt []string, _ []byte) error {
			to = rcpt
			return nil
		})
	n := notification.New("", "").WithMail(m, "ops@example.com")

	require.True(t, n.Enabled())
	require.NoError(t, n.Send(context.Background(), mailed{sku: "TV-LG-001"}))
	assert.Equal(t, []string{"ops@example.com"}, to)
}

func TestSendMailSkippedWithoutRecipients(t *testing.T) {
	called := false
	m := mail.New(mail.Config{Host: "smtp.test", Port: "25"}).
		WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
			called = true
			return nil
		})
	n := notification.New("", "").WithMail(m)

	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send(context.Background(), mailed{sku: "x"}))
	assert.False(t, called)
}
