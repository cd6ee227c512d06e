package model

import (
	"fmt"
	"testing"
)

func TestNewSessionDefaults(t *testing.T) {
	t.Parallel()
	s := NewSession("abc")
	if s.SessionID != "abc" {
		t.Fatalf("SessionID = %q, want abc", s.SessionID)
	}
	if s.ConversationHistory == nil || len(s.ConversationHistory) != 0 {
		t.Fatalf("ConversationHistory = %v, want empty non-nil", s.ConversationHistory)
	}
	if s.Scope != "" || s.DissatisfactionCount != 0 || s.Escalated {
		t.Fatalf("non-zero defaults: %+v", s)
	}
}

func TestAppendPrunesOldestFirst(t *testing.T) {
	t.Parallel()
	s := NewSession("abc")
	for i := 0; i < HistoryLimit+10; i++ {
		s.Append("user", fmt.Sprintf("message %d", i))
	}
	if len(s.ConversationHistory) != HistoryLimit {
		t.Fatalf("history = %d, want %d", len(s.ConversationHistory), HistoryLimit)
	}
	if got, want := s.ConversationHistory[0].Content, "message 10"; got != want {
		t.Fatalf("oldest retained = %q, want %q", got, want)
	}
	if got, want := s.ConversationHistory[HistoryLimit-1].Content, fmt.Sprintf("message %d", HistoryLimit+9); got != want {
		t.Fatalf("newest = %q, want %q", got, want)
	}
}
