package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-pet-adoption/internal/repo"
)

// AdminService backs the read-only monitoring endpoint. Callers must have
// checked the admin role; adoption decisions never go through here.
type AdminService struct {
	DB *gorm.DB
}

// Stats returns marketplace counters.
func (s *AdminService) Stats(ctx context.Context) (*repo.AdminStats, error) {
	return repo.LoadAdminStats(ctx, s.DB)
}
