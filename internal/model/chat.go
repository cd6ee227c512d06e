package model

// ChatRequest is the inbound chat payload.
//
// swagger:model ChatRequest
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
	// Student and ClassID are optional explicit overrides; when present they
	// win over anything detected in the message text.
	Student string `json:"student"`
	ClassID string `json:"class_id"`
}

// ChatResponse is the chat reply. The escalation fields are only populated
// when the turn short-circuited into a support escalation; TicketID is nil
// unless ticket delivery actually succeeded.
//
// swagger:model ChatResponse
type ChatResponse struct {
	SessionID     string  `json:"session_id"`
	Reply         string  `json:"reply"`
	Escalated     bool    `json:"escalated,omitempty"`
	TicketCreated bool    `json:"ticket_created,omitempty"`
	TicketID      *string `json:"ticket_id,omitempty"`
}
