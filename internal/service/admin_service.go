package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
)

// AdminService handles back-office login and dashboard metrics.
type AdminService struct {
	admins *repository.AdminRepository
	stats  *repository.StatsRepository
	auth   *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(admins *repository.AdminRepository, stats *repository.StatsRepository, auth *AuthService) *AdminService {
	return &AdminService{admins: admins, stats: stats, auth: auth}
}

// Login authenticates an admin by email and password.
func (s *AdminService) Login(ctx context.Context, req *model.AdminLoginRequest) (*model.AdminLoginResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.auth.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateAdminToken(admin.ID)
	if err != nil {
		return nil, err
	}
	return &model.AdminLoginResponse{Token: token, Admin: *admin}, nil
}

// GetProfile retrieves the logged-in admin's account.
func (s *AdminService) GetProfile(ctx context.Context, adminID int) (*model.Admin, error) {
	return s.admins.GetByID(ctx, adminID)
}

// DashboardStats is the aggregate payload for the admin landing page.
type DashboardStats struct {
	TotalUsers      int                          `json:"total_users"`
	TotalPacks      int                          `json:"total_packs"`
	TotalTests      int                          `json:"total_tests"`
	TotalAttempts   int                          `json:"total_attempts"`
	RevenuePaise30d int64                        `json:"revenue_paise_30d"`
	TopTests        []repository.TestAttemptStat `json:"top_tests"`
}

// GetDashboard assembles the admin dashboard metrics.
func (s *AdminService) GetDashboard(ctx context.Context) (*DashboardStats, error) {
	users, packs, tests, attempts, err := s.stats.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	revenue, err := s.stats.GetRevenuePaise(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	topTests, err := s.stats.GetTopTests(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalUsers:      users,
		TotalPacks:      packs,
		TotalTests:      tests,
		TotalAttempts:   attempts,
		RevenuePaise30d: revenue,
		TopTests:        topTests,
	}, nil
}
