package database

import (
	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	server    *models.ServerModel
	status    *models.StatusModel
	icon      *models.IconModel
	rank      *models.RankModel
	vote      *models.VoteModel
	review    *models.ReviewModel
	analytics *models.AnalyticsModel
	user      *models.UserModel
	promotion *models.PromotionModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		server:    models.NewServer(db, logger),
		status:    models.NewStatus(db, logger),
		icon:      models.NewIcon(db, logger),
		rank:      models.NewRank(db, logger),
		vote:      models.NewVote(db, logger),
		review:    models.NewReview(db, logger),
		analytics: models.NewAnalytics(db, logger),
		user:      models.NewUser(db, logger),
		promotion: models.NewPromotion(db, logger),
	}
}

// Server returns the server model repository.
func (r *Repository) Server() *models.ServerModel {
	return r.server
}

// Status returns the status sample model repository.
func (r *Repository) Status() *models.StatusModel {
	return r.status
}

// Icon returns the icon model repository.
func (r *Repository) Icon() *models.IconModel {
	return r.icon
}

// Rank returns the rank snapshot model repository.
func (r *Repository) Rank() *models.RankModel {
	return r.rank
}

// Vote returns the vote model repository.
func (r *Repository) Vote() *models.VoteModel {
	return r.vote
}

// Review returns the review model repository.
func (r *Repository) Review() *models.ReviewModel {
	return r.review
}

// Analytics returns the analytics model repository.
func (r *Repository) Analytics() *models.AnalyticsModel {
	return r.analytics
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}

// Promotion returns the promotion model repository.
func (r *Repository) Promotion() *models.PromotionModel {
	return r.promotion
}
