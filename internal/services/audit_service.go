package services

import (
	"fmt"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
)

// --- AuditService Interface ---
type AuditService interface {
	GetEntries(page, pageSize int) ([]models.AuditEntry, int, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
}

// NewAuditService creates a new instance of AuditService.
func NewAuditService(ar repositories.AuditRepository) AuditService {
	return &auditService{auditRepo: ar}
}

func (s *auditService) GetEntries(page, pageSize int) ([]models.AuditEntry, int, error) {
	entries, totalCount, err := s.auditRepo.GetEntries(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get audit entries: %w", err)
	}
	return entries, totalCount, nil
}
