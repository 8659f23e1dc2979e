// Package email sends support-request notifications through Resend.
package email

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Kind classifies notifier failures.
type Kind string

// Failure kinds surfaced to the HTTP layer.
const (
	KindMisconfigured Kind = "misconfigured"
	KindSendFailed    Kind = "send_failed"
)

// Error is the typed failure returned by the notifier. The request-support
// endpoint propagates it as a 500; everything else in this service degrades,
// email dispatch does not.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("email %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("email %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// SupportRequest describes one "please analyze this site" notification.
type SupportRequest struct {
	Domain   string
	URL      string
	Source   string
	Metadata map[string]string
}

// Notifier sends support-request notifications.
type Notifier interface {
	SendSupportRequest(ctx context.Context, req SupportRequest) error
}

// Config holds the notifier addresses and credentials.
type Config struct {
	APIKey string
	From   string
	To     string
}

// ResendNotifier delivers notifications via the Resend API.
type ResendNotifier struct {
	cfg    Config
	client *resend.Client
	logger *zap.Logger
}

// NewResendNotifier builds a notifier. A missing API key is tolerated at
// construction (the service must boot without email) and only fails sends.
func NewResendNotifier(cfg Config, logger *zap.Logger) *ResendNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &ResendNotifier{cfg: cfg, logger: logger}
	if cfg.APIKey == "" {
		logger.Warn("email api key is not configured; email sending will fail")
	} else {
		n.client = resend.NewClient(cfg.APIKey)
	}
	return n
}

// SendSupportRequest emails the fixed plain-text notification. It returns a
// typed *Error when the notifier is unconfigured or the provider rejects
// the send.
func (n *ResendNotifier) SendSupportRequest(ctx context.Context, req SupportRequest) error {
	if n.client == nil {
		return &Error{Kind: KindMisconfigured, Err: fmt.Errorf("email api key is not configured")}
	}

	subject := fmt.Sprintf("Clausea - Support request for %s", req.Domain)
	body := supportRequestBody(req)

	params := &resend.SendEmailRequest{
		From:    n.cfg.From,
		To:      []string{n.cfg.To},
		Subject: subject,
		Text:    body,
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		n.logger.Error("failed to send support email",
			zap.String("domain", req.Domain), zap.Error(err))
		return &Error{Kind: KindSendFailed, Err: err}
	}

	n.logger.Info("support email sent",
		zap.String("to", n.cfg.To), zap.String("subject", subject))
	return nil
}

// supportRequestBody renders the notification template. Metadata keys are
// sorted so the output is deterministic.
func supportRequestBody(req SupportRequest) string {
	var b strings.Builder
	b.WriteString("A user requested that Clausea support this site.\n\n")
	fmt.Fprintf(&b, "Domain: %s\n", req.Domain)
	fmt.Fprintf(&b, "URL: %s\n", req.URL)
	fmt.Fprintf(&b, "Source: %s\n", req.Source)
	fmt.Fprintf(&b, "Dashboard: https://clausea.co/products/%s\n", req.Domain)
	b.WriteString("Target apps data: https://github.com/lvndry/clausea/blob/main/apps/backend/src/data/target_apps.json")

	if len(req.Metadata) > 0 {
		b.WriteString("\n\nAdditional metadata:")
		keys := make([]string, 0, len(req.Metadata))
		for k := range req.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n- %s: %s", k, req.Metadata[k])
		}
	}
	return b.String()
}
