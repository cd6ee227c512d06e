package model

// SupportTicket records every escalation attempt, delivered or not, so
// support can follow up even when the notification channel was down.
//
// swagger:model SupportTicket
type SupportTicket struct {
	BaseModel
	TicketID       string `gorm:"size:120;index" json:"ticketId"`
	SessionID      string `gorm:"size:64;index" json:"sessionId"`
	RequesterEmail string `gorm:"size:100" json:"requesterEmail"`
	RequesterName  string `gorm:"size:100" json:"requesterName"`
	IssueSummary   string `gorm:"size:255" json:"issueSummary"`
	TranscriptKey  string `gorm:"size:255" json:"transcriptKey"`
	Delivered      bool   `json:"delivered"`
}
