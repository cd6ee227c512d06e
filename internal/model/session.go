package model

// Scope identifies the conversational focus bound in a session.
type Scope string

const (
	ScopeStudent Scope = "student"
	ScopeClass   Scope = "class"
	ScopeCompare Scope = "compare"
	ScopeMulti   Scope = "multi"
	ScopeGeneral Scope = "general"
)

// HistoryLimit caps the stored conversation history; oldest entries are
// pruned first.
const HistoryLimit = 50

// MaxMultiStudents bounds a multi-student binding.
const MaxMultiStudents = 5

type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Session is the per-conversation state persisted between turns.
//
// Student and ClassID carry forward across turns so a follow-up with no
// explicit entity can reuse the previous focus; ComparePair and
// MultiStudents describe the current turn only. The assistant orchestrator
// is the only writer.
type Session struct {
	SessionID            string        `json:"session_id"`
	Scope                Scope         `json:"scope,omitempty"`
	Student              string        `json:"student,omitempty"`
	ClassID              string        `json:"class_id,omitempty"`
	ComparePair          []string      `json:"compare_pair,omitempty"`
	MultiStudents        []string      `json:"multi_students,omitempty"`
	ConversationHistory  []ChatMessage `json:"conversation_history"`
	DissatisfactionCount int           `json:"dissatisfaction_count"`
	Escalated            bool          `json:"escalated"`
}

// NewSession returns the documented empty-default session for an id that has
// never been seen.
func NewSession(id string) *Session {
	return &Session{
		SessionID:           id,
		ConversationHistory: []ChatMessage{},
	}
}

// Append adds a message and prunes history beyond HistoryLimit, oldest first.
func (s *Session) Append(role, content string) {
	s.ConversationHistory = append(s.ConversationHistory, ChatMessage{Role: role, Content: content})
	if n := len(s.ConversationHistory); n > HistoryLimit {
		s.ConversationHistory = s.ConversationHistory[n-HistoryLimit:]
	}
}
