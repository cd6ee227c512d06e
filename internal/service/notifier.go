package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"learnpulse_backend/internal/config"
	"learnpulse_backend/pkg/logger"

	"go.uber.org/zap"
)

// Notifier delivers a support ticket to the support team.
type Notifier interface {
	Notify(ticketID, requesterName, requesterEmail, issueSummary, transcript string) error
}

// NewNotifier returns an SMTP notifier when a host is configured, otherwise
// a log-only notifier so escalation still works in development.
func NewNotifier(cfg *config.SupportConfig) Notifier {
	if cfg.SMTPHost == "" {
		return &LogNotifier{SupportEmail: cfg.Email}
	}
	return &SMTPNotifier{Config: cfg}
}

// LogNotifier records what would have been sent. Always succeeds.
type LogNotifier struct {
	SupportEmail string
}

func (n *LogNotifier) Notify(ticketID, requesterName, requesterEmail, issueSummary, transcript string) error {
	logger.Log.Warn("SMTP not configured, logging ticket instead of sending email",
		zap.String("ticket_id", ticketID),
		zap.String("to", n.SupportEmail),
		zap.String("from", requesterEmail),
		zap.String("subject", "Support Request - "+issueSummary))
	return nil
}

// SMTPNotifier emails the ticket with the transcript inlined.
type SMTPNotifier struct {
	Config *config.SupportConfig
}

func (n *SMTPNotifier) Notify(ticketID, requesterName, requesterEmail, issueSummary, transcript string) error {
	cfg := n.Config

	from := cfg.FromEmail
	if from == "" {
		from = "noreply@learnpulse.ai"
	}

	body := strings.Join([]string{
		"An instructor has requested support assistance.",
		"",
		"Instructor Details:",
		"- Name: " + requesterName,
		"- Email: " + requesterEmail,
		"- Ticket: " + ticketID,
		"",
		"Issue Summary:",
		issueSummary,
		"",
		"Conversation transcript follows.",
		"",
		transcript,
	}, "\r\n")

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + cfg.Email,
		"Subject: Instructor Support Request - " + issueSummary,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, from, []string{cfg.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("send support email: %w", err)
	}
	logger.Log.Info("Support ticket email sent",
		zap.String("ticket_id", ticketID),
		zap.String("to", cfg.Email))
	return nil
}
