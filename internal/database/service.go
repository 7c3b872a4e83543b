package database

import (
	"github.com/craftlist/craftlist/internal/database/service"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	server    *service.ServerService
	vote      *service.VoteService
	rank      *service.RankService
	analytics *service.AnalyticsService
	icon      *service.IconService
}

// NewService creates a new service instance with all services.
func NewService(db *bun.DB, repository *Repository, logger *zap.Logger) *Service {
	rankService := service.NewRank(db, repository.Server(), repository.Rank(), logger)

	return &Service{
		server:    service.NewServer(repository.Server(), repository.User(), logger),
		vote:      service.NewVote(repository.Vote(), repository.Server(), rankService, logger),
		rank:      rankService,
		analytics: service.NewAnalytics(repository.Analytics(), logger),
		icon:      service.NewIcon(repository.Icon(), logger),
	}
}

// Server returns the server service.
func (s *Service) Server() *service.ServerService {
	return s.server
}

// Vote returns the vote service.
func (s *Service) Vote() *service.VoteService {
	return s.vote
}

// Rank returns the rank service.
func (s *Service) Rank() *service.RankService {
	return s.rank
}

// Analytics returns the analytics service.
func (s *Service) Analytics() *service.AnalyticsService {
	return s.analytics
}

// Icon returns the icon service.
func (s *Service) Icon() *service.IconService {
	return s.icon
}
