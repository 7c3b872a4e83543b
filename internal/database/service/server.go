package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"go.uber.org/zap"
)

var (
	ErrInvalidSubmission = errors.New("invalid server submission")
	ErrNotOwner          = errors.New("not the owner of this server")
	ErrInvalidTransition = errors.New("invalid moderation transition")
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// ServerService handles listing submission, ownership, and moderation logic.
type ServerService struct {
	server *models.ServerModel
	user   *models.UserModel
	logger *zap.Logger
}

// NewServer creates a new server service.
func NewServer(server *models.ServerModel, user *models.UserModel, logger *zap.Logger) *ServerService {
	return &ServerService{
		server: server,
		user:   user,
		logger: logger.Named("server_service"),
	}
}

// Slugify derives a URL slug from a listing name.
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Submit validates and stores a new listing in pending state.
func (s *ServerService) Submit(ctx context.Context, server *types.Server) error {
	if server.Name == "" || server.Host == "" {
		return fmt.Errorf("%w: name and host are required", ErrInvalidSubmission)
	}

	if !server.Family.Valid() {
		return fmt.Errorf("%w: unknown client family %q", ErrInvalidSubmission, server.Family)
	}

	owner, err := s.user.GetByID(ctx, server.OwnerID)
	if err != nil {
		return err
	}

	if owner.Banned() {
		return fmt.Errorf("%w: submitter is banned", ErrInvalidSubmission)
	}

	server.Slug = Slugify(server.Name)
	server.Status = enum.ServerStatusPending

	if err := s.server.Create(ctx, server); err != nil {
		return err
	}

	s.logger.Info("Server submitted",
		zap.Int64("serverID", server.ID),
		zap.String("slug", server.Slug))

	return nil
}

// Moderate applies an admin status transition. Pending listings may be
// approved or rejected; approved and rejected listings may be re-reviewed
// into each other's state.
func (s *ServerService) Moderate(ctx context.Context, serverID int64, status enum.ServerStatus) error {
	if status != enum.ServerStatusApproved && status != enum.ServerStatusRejected {
		return fmt.Errorf("%w: cannot transition to %q", ErrInvalidTransition, status)
	}

	server, err := s.server.GetByID(ctx, serverID)
	if err != nil {
		return err
	}

	if server.Status == status {
		return nil
	}

	if err := s.server.SetStatus(ctx, serverID, status); err != nil {
		return err
	}

	s.logger.Info("Server moderated",
		zap.Int64("serverID", serverID),
		zap.String("from", string(server.Status)),
		zap.String("to", string(status)))

	return nil
}

// UpdateListing persists owner edits after verifying ownership. Admins may
// edit any listing.
func (s *ServerService) UpdateListing(ctx context.Context, actorID int64, server *types.Server) error {
	if err := s.requireOwnerOrAdmin(ctx, actorID, server.ID); err != nil {
		return err
	}

	return s.server.Update(ctx, server)
}

// DeleteListing removes a listing after verifying ownership. Admins may
// delete any listing. Dependent rows cascade.
func (s *ServerService) DeleteListing(ctx context.Context, actorID, serverID int64) error {
	if err := s.requireOwnerOrAdmin(ctx, actorID, serverID); err != nil {
		return err
	}

	return s.server.Delete(ctx, serverID)
}

func (s *ServerService) requireOwnerOrAdmin(ctx context.Context, actorID, serverID int64) error {
	actor, err := s.user.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	if actor.IsAdmin {
		return nil
	}

	server, err := s.server.GetByID(ctx, serverID)
	if err != nil {
		return err
	}

	if server.OwnerID != actorID {
		return ErrNotOwner
	}

	return nil
}
