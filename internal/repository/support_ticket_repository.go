package repository

import (
	"learnpulse_backend/internal/model"

	"gorm.io/gorm"
)

type SupportTicketRepository struct {
	DB *gorm.DB
}

func NewSupportTicketRepository(db *gorm.DB) *SupportTicketRepository {
	return &SupportTicketRepository{DB: db}
}

func (r *SupportTicketRepository) Create(ticket *model.SupportTicket) error {
	return r.DB.Create(ticket).Error
}

func (r *SupportTicketRepository) FindBySessionID(sessionID string) ([]model.SupportTicket, error) {
	var tickets []model.SupportTicket
	err := r.DB.Where("session_id = ?", sessionID).Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}
