package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"learnpulse_backend/internal/model"
	"learnpulse_backend/pkg/logger"
	"learnpulse_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// EscalationThreshold is the number of dissatisfaction signals in one
// session before a support ticket is raised automatically.
const EscalationThreshold = 3

var dissatisfactionKeywords = []string{
	"not satisfied",
	"doesn't help",
	"still wrong",
	"not working",
	"i need help",
	"speak to someone",
	"talk to support",
	"contact support",
	"human support",
	"this is wrong",
	"not what i asked",
	"doesn't answer",
	"unclear",
	"confusing",
	"frustrated",
	"not helpful",
}

// TicketStore persists escalation records.
type TicketStore interface {
	Create(ticket *model.SupportTicket) error
}

// SupportService tracks instructor dissatisfaction and raises support
// tickets with the conversation transcript attached.
type SupportService struct {
	Tickets  TicketStore
	Storage  *StorageService
	Notifier Notifier
}

func NewSupportService(tickets TicketStore, storage *StorageService, notifier Notifier) *SupportService {
	return &SupportService{Tickets: tickets, Storage: storage, Notifier: notifier}
}

// DetectDissatisfaction reports whether a message carries a dissatisfaction
// signal, via case-insensitive substring match.
func (s *SupportService) DetectDissatisfaction(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range dissatisfactionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ShouldEscalate reports whether the session has crossed the threshold and
// has not already been escalated. One ticket per session, ever.
func (s *SupportService) ShouldEscalate(session *model.Session) bool {
	return session.DissatisfactionCount >= EscalationThreshold && !session.Escalated
}

// Ticket is the outcome of an escalation attempt.
type Ticket struct {
	ID        string
	Delivered bool
}

// CreateTicket archives the conversation transcript, records the ticket, and
// notifies the support team. A nil requester means an unauthenticated demo
// session. The returned error covers the unrecoverable path only; delivery
// failures are recorded on the ticket and reported via Delivered=false.
func (s *SupportService) CreateTicket(ctx context.Context, session *model.Session, requester *model.User, issueSummary string) (Ticket, error) {
	now := time.Now()
	ticketID := fmt.Sprintf("TICKET-%s-%s", session.SessionID, now.Format("20060102150405"))

	email, name := "N/A", "N/A"
	if requester != nil {
		email, name = requester.Email, requester.Name
	}

	transcript := renderTranscript(ticketID, session, email, name, now)

	transcriptKey := fmt.Sprintf("support_tickets/support_ticket_%s_%s.txt", session.SessionID, now.Format("20060102_150405"))
	if _, err := s.Storage.Upload(ctx, transcriptKey, strings.NewReader(transcript), int64(len(transcript)), "text/plain"); err != nil {
		return Ticket{}, fmt.Errorf("archive transcript: %w", err)
	}

	record := &model.SupportTicket{
		TicketID:       ticketID,
		SessionID:      session.SessionID,
		RequesterEmail: email,
		RequesterName:  name,
		IssueSummary:   issueSummary,
		TranscriptKey:  transcriptKey,
	}

	delivered := true
	if err := s.Notifier.Notify(ticketID, name, email, issueSummary, transcript); err != nil {
		delivered = false
		logger.Log.Error("Support ticket notification failed",
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
	record.Delivered = delivered

	if err := s.Tickets.Create(record); err != nil {
		return Ticket{}, fmt.Errorf("persist ticket: %w", err)
	}

	outcome := "created"
	if !delivered {
		outcome = "created_undelivered"
	}
	monitoring.EscalationCounter.WithLabelValues(outcome).Inc()
	logger.Log.Info("Support ticket created",
		zap.String("ticket_id", ticketID),
		zap.String("session_id", session.SessionID),
		zap.Bool("delivered", delivered))

	return Ticket{ID: ticketID, Delivered: delivered}, nil
}

// renderTranscript produces the framed plain-text archive of a conversation.
func renderTranscript(ticketID string, session *model.Session, email, name string, now time.Time) string {
	frame := strings.Repeat("=", 80)
	rule := strings.Repeat("-", 80)

	var b strings.Builder
	b.WriteString(frame + "\n")
	b.WriteString("LEARNPULSE AI INSTRUCTOR ASSISTANT - SUPPORT TICKET\n")
	b.WriteString(frame + "\n\n")
	b.WriteString("Ticket ID: " + ticketID + "\n")
	b.WriteString("Session ID: " + session.SessionID + "\n")
	b.WriteString("Timestamp: " + now.Format(time.RFC3339) + "\n")
	b.WriteString("Instructor Email: " + email + "\n")
	b.WriteString("Instructor Name: " + name + "\n")
	b.WriteString("\n" + frame + "\n")
	b.WriteString("CONVERSATION HISTORY\n")
	b.WriteString(frame + "\n\n")

	for i, msg := range session.ConversationHistory {
		b.WriteString(fmt.Sprintf("[%d] %s:\n", i+1, strings.ToUpper(msg.Role)))
		b.WriteString(msg.Content + "\n")
		b.WriteString("\n" + rule + "\n\n")
	}

	b.WriteString(frame + "\n")
	b.WriteString("END OF CONVERSATION\n")
	b.WriteString(frame + "\n")
	return b.String()
}
