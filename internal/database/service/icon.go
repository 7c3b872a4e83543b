package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/craftlist/craftlist/internal/icon"
	"go.uber.org/zap"
)

// iconStore is the slice of the icon model the service depends on.
type iconStore interface {
	GetHash(ctx context.Context, serverID int64) (string, error)
	Get(ctx context.Context, serverID int64) (*types.ServerIcon, error)
	Upsert(ctx context.Context, icon *types.ServerIcon) error
	Delete(ctx context.Context, serverID int64) error
}

// IconService maintains the cached icon rows fed by the fleet scanner.
type IconService struct {
	icon   iconStore
	logger *zap.Logger
}

// NewIcon creates an IconService.
func NewIcon(iconModel *models.IconModel, logger *zap.Logger) *IconService {
	return &IconService{
		icon:   iconModel,
		logger: logger.Named("icon_service"),
	}
}

// Refresh reconciles the stored icon for a server against the payload the
// latest status check returned. Invalid payloads evict any stored icon so
// stale art never outlives the server that stopped serving it. Unchanged
// payloads are detected by content hash and skipped without a write.
func (s *IconService) Refresh(ctx context.Context, serverID int64, payload string) error {
	cleaned, err := icon.Validate(payload)
	if err != nil {
		if delErr := s.icon.Delete(ctx, serverID); delErr != nil {
			return fmt.Errorf("failed to evict invalid icon: %w", delErr)
		}

		return fmt.Errorf("invalid icon payload: %w", err)
	}

	hash := icon.Hash(cleaned)

	stored, err := s.icon.GetHash(ctx, serverID)
	if err != nil {
		return fmt.Errorf("failed to get stored icon hash: %w", err)
	}

	if stored == hash {
		s.logger.Debug("Icon unchanged, skipping write",
			zap.Int64("serverID", serverID),
			zap.String("hash", hash))

		return nil
	}

	if err := s.icon.Upsert(ctx, &types.ServerIcon{
		ServerID:  serverID,
		Data:      cleaned,
		Hash:      hash,
		UpdatedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to upsert icon: %w", err)
	}

	s.logger.Debug("Icon updated",
		zap.Int64("serverID", serverID),
		zap.String("hash", hash))

	return nil
}

// Get returns the stored icon for a server, or nil when none is cached.
func (s *IconService) Get(ctx context.Context, serverID int64) (*types.ServerIcon, error) {
	return s.icon.Get(ctx, serverID)
}

// Remove evicts the stored icon for a server.
func (s *IconService) Remove(ctx context.Context, serverID int64) error {
	return s.icon.Delete(ctx, serverID)
}
