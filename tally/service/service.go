// Package service exposes the operations of the tally service
// independent of any transport. Mutating operations pass through
// the authorization guard before the voting engine sees them.
package service

import (
	"context"

	"github.com/jrife/tally/tally/auth"
	"github.com/jrife/tally/tally/storage"
	"github.com/jrife/tally/tally/tallypb"
	"github.com/jrife/tally/tally/voting"
	"github.com/jrife/tally/utils/log"
	"go.uber.org/zap"
)

// Config contains configuration for a service
type Config struct {
	Logger *zap.Logger
	Guard  *auth.Guard
	Engine *voting.Engine
}

// Service implements the tally operations
type Service struct {
	logger *zap.Logger
	guard  *auth.Guard
	engine *voting.Engine
	store  *storage.Store
}

// New creates a service
func New(config Config) *Service {
	service := &Service{
		logger: config.Logger,
		guard:  config.Guard,
		engine: config.Engine,
		store:  config.Engine.Store(),
	}

	if service.logger == nil {
		service.logger = zap.L()
	}

	return service
}

// Get returns the post with this id or nil
func (service *Service) Get(ctx context.Context, id uint32) (*tallypb.Post, error) {
	return service.store.Get(ctx, id)
}

// List returns every post in ascending id order
func (service *Service) List(ctx context.Context) ([]*tallypb.Post, error) {
	return service.store.List(ctx)
}

// Insert stores post, replacing any post with the same
// id, and returns the replaced post or nil
func (service *Service) Insert(ctx context.Context, post *tallypb.Post) (*tallypb.Post, error) {
	if _, err := service.authorize(ctx, "Insert"); err != nil {
		return nil, err
	}

	return service.engine.InsertPost(ctx, post)
}

// CastVote casts the caller's vote on a post and returns the updated post
func (service *Service) CastVote(ctx context.Context, id uint32, direction tallypb.Direction) (*tallypb.Post, error) {
	principal, err := service.authorize(ctx, "CastVote")

	if err != nil {
		return nil, err
	}

	return service.engine.CastVote(ctx, id, principal.String(), direction)
}

// RemovePost removes a post along with its ledger
// entry and returns the removed post or nil
func (service *Service) RemovePost(ctx context.Context, id uint32) (*tallypb.Post, error) {
	if _, err := service.authorize(ctx, "RemovePost"); err != nil {
		return nil, err
	}

	return service.engine.RemovePost(ctx, id)
}

// IsAnonymousAllowed reports whether anonymous
// callers may perform mutating operations
func (service *Service) IsAnonymousAllowed(ctx context.Context) bool {
	return service.guard.AllowAnonymous()
}

func (service *Service) authorize(ctx context.Context, operation string) (auth.Principal, error) {
	principal, err := service.guard.Authorize(ctx)

	if err != nil {
		log.WithContext(ctx, service.logger).Info("rejected", zap.String("operation", operation), zap.Error(err))

		return principal, err
	}

	return principal, nil
}
