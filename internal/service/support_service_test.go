package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"learnpulse_backend/internal/model"
)

type fakeTicketStore struct {
	created []*model.SupportTicket
	err     error
}

func (f *fakeTicketStore) Create(ticket *model.SupportTicket) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, ticket)
	return nil
}

type memStorageProvider struct {
	objects map[string]string
	err     error
}

func (m *memStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, _ := io.ReadAll(reader)
	if m.objects == nil {
		m.objects = make(map[string]string)
	}
	m.objects[filename] = string(data)
	return m.GetURL(filename), nil
}

func (m *memStorageProvider) Delete(ctx context.Context, filename string) error {
	delete(m.objects, filename)
	return nil
}

func (m *memStorageProvider) GetURL(filename string) string { return "/artifacts/" + filename }

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) Notify(ticketID, requesterName, requesterEmail, issueSummary, transcript string) error {
	f.calls++
	return f.err
}

func newSupport(store *fakeTicketStore, provider *memStorageProvider, notifier *fakeNotifier) *SupportService {
	return NewSupportService(store, &StorageService{Provider: provider}, notifier)
}

func TestDetectDissatisfaction(t *testing.T) {
	t.Parallel()
	svc := newSupport(&fakeTicketStore{}, &memStorageProvider{}, &fakeNotifier{})

	tests := []struct {
		message string
		want    bool
	}{
		{"I'm not satisfied with this answer", true},
		{"This is CONFUSING", true},
		{"that doesn't help at all", true},
		{"I want to talk to support", true},
		{"Thanks, that was great!", false},
		{"How is Aisha doing?", false},
	}
	for _, tt := range tests {
		if got := svc.DetectDissatisfaction(tt.message); got != tt.want {
			t.Fatalf("DetectDissatisfaction(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestShouldEscalate(t *testing.T) {
	t.Parallel()
	svc := newSupport(&fakeTicketStore{}, &memStorageProvider{}, &fakeNotifier{})

	tests := []struct {
		count     int
		escalated bool
		want      bool
	}{
		{2, false, false},
		{3, false, true},
		{4, false, true},
		{3, true, false},
	}
	for _, tt := range tests {
		session := &model.Session{DissatisfactionCount: tt.count, Escalated: tt.escalated}
		if got := svc.ShouldEscalate(session); got != tt.want {
			t.Fatalf("ShouldEscalate(count=%d, escalated=%v) = %v, want %v", tt.count, tt.escalated, got, tt.want)
		}
	}
}

func TestCreateTicket(t *testing.T) {
	t.Parallel()
	store := &fakeTicketStore{}
	provider := &memStorageProvider{}
	notifier := &fakeNotifier{}
	svc := newSupport(store, provider, notifier)

	session := model.NewSession("sess-1")
	session.Append("user", "This is not helpful")
	session.Append("assistant", "Sorry about that.")
	requester := &model.User{Name: "Dana", Email: "dana@school.com"}

	ticket, err := svc.CreateTicket(context.Background(), session, requester, "Instructor dissatisfaction after repeated signals")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if !strings.HasPrefix(ticket.ID, "TICKET-sess-1-") {
		t.Fatalf("ticket id = %q, want TICKET-sess-1-<timestamp>", ticket.ID)
	}
	if !ticket.Delivered {
		t.Fatal("Delivered = false, want true")
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.calls)
	}
	if len(store.created) != 1 {
		t.Fatalf("tickets persisted = %d, want 1", len(store.created))
	}
	rec := store.created[0]
	if rec.RequesterEmail != "dana@school.com" || !rec.Delivered {
		t.Fatalf("persisted ticket = %+v", rec)
	}

	transcript, ok := provider.objects[rec.TranscriptKey]
	if !ok {
		t.Fatalf("transcript %q not archived", rec.TranscriptKey)
	}
	if !containsAll(transcript, "CONVERSATION HISTORY", "[1] USER:", "This is not helpful", "[2] ASSISTANT:") {
		t.Fatalf("transcript missing content:\n%s", transcript)
	}
}

func TestCreateTicketAnonymousRequester(t *testing.T) {
	t.Parallel()
	store := &fakeTicketStore{}
	svc := newSupport(store, &memStorageProvider{}, &fakeNotifier{})

	session := model.NewSession("sess-2")
	session.Append("user", "contact support please")

	ticket, err := svc.CreateTicket(context.Background(), session, nil, "summary")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if !ticket.Delivered {
		t.Fatal("Delivered = false, want true")
	}
	if store.created[0].RequesterEmail != "N/A" {
		t.Fatalf("RequesterEmail = %q, want N/A", store.created[0].RequesterEmail)
	}
}

func TestCreateTicketNotifierFailure(t *testing.T) {
	t.Parallel()
	store := &fakeTicketStore{}
	svc := newSupport(store, &memStorageProvider{}, &fakeNotifier{err: errors.New("smtp down")})

	session := model.NewSession("sess-3")
	ticket, err := svc.CreateTicket(context.Background(), session, nil, "summary")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Delivered {
		t.Fatal("Delivered = true despite notifier failure, want false")
	}
	// The ticket row still lands so support can follow up.
	if len(store.created) != 1 || store.created[0].Delivered {
		t.Fatalf("persisted = %+v, want one undelivered ticket", store.created)
	}
}

func TestCreateTicketStorageFailure(t *testing.T) {
	t.Parallel()
	store := &fakeTicketStore{}
	svc := newSupport(store, &memStorageProvider{err: errors.New("bucket gone")}, &fakeNotifier{})

	session := model.NewSession("sess-4")
	if _, err := svc.CreateTicket(context.Background(), session, nil, "summary"); err == nil {
		t.Fatal("CreateTicket succeeded despite storage failure, want error")
	}
	if len(store.created) != 0 {
		t.Fatalf("tickets persisted = %d, want 0", len(store.created))
	}
}
