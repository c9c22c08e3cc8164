package service

import (
	"context"

	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
)

// SettingService manages key-value application settings.
type SettingService struct {
	settings *repository.SettingRepository
}

// NewSettingService creates a new SettingService.
func NewSettingService(settings *repository.SettingRepository) *SettingService {
	return &SettingService{settings: settings}
}

// GetPublic returns the settings safe to serve without authentication.
func (s *SettingService) GetPublic(ctx context.Context) ([]model.Setting, error) {
	return s.settings.GetPublic(ctx)
}

// GetAll returns every setting. Admin only.
func (s *SettingService) GetAll(ctx context.Context) ([]model.Setting, error) {
	return s.settings.GetAll(ctx)
}

// BulkUpdate upserts the given key-value pairs.
func (s *SettingService) BulkUpdate(ctx context.Context, values map[string]string) error {
	for key, value := range values {
		if err := s.settings.Upsert(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
