package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/mapper"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IncidentService struct {
	incidentRepo *repository.IncidentRepository
	logger       *zap.Logger
}

func NewIncidentService(incidentRepo *repository.IncidentRepository, logger *zap.Logger) *IncidentService {
	return &IncidentService{
		incidentRepo: incidentRepo,
		logger:       logger,
	}
}

func (s *IncidentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.IncidentDTO, error) {
	incident, err := s.incidentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}

	dto := mapper.ToIncidentDTO(incident)
	return &dto, nil
}

func (s *IncidentService) List(ctx context.Context, page, pageSize int, filters *repository.IncidentFilters) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	incidents, total, err := s.incidentRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}

	dtos := make([]domain.IncidentDTO, len(incidents))
	for i := range incidents {
		dtos[i] = mapper.ToIncidentDTO(&incidents[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus moves an incident between open, acknowledged and
// resolved by hand. Resolving stamps resolved_at; reopening clears it.
func (s *IncidentService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.IncidentStatus) (*domain.IncidentDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown incident status %q", ErrInvalidInput, status)
	}

	incident, err := s.incidentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}

	if incident.Status != status {
		incident.Status = status
		if status == domain.IncidentResolved {
			now := time.Now()
			incident.ResolvedAt = &now
		} else {
			incident.ResolvedAt = nil
		}
		if err := s.incidentRepo.Update(ctx, incident); err != nil {
			return nil, fmt.Errorf("failed to update incident: %w", err)
		}
	}

	dto := mapper.ToIncidentDTO(incident)
	return &dto, nil
}
